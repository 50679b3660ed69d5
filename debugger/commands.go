package debugger

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/avanasov/stackc/compiler"
	"github.com/avanasov/stackc/vm"
)

// handleCommand dispatches one command line. The returned bool reports
// whether the command resumes execution (in which case action is the
// vm.StepAction to return from the pre-step callback); commands that only
// print information return (_, false) and the repl keeps prompting.
func (d *Debugger) handleCommand(cmd string, args []string) (vm.StepAction, bool) {
	switch strings.ToLower(cmd) {
	case "continue", "c":
		d.mode = modeContinue
		fmt.Fprintln(d.out, "continuing...")
		return vm.Continue, true
	case "step", "s":
		d.mode = modeStep
		return vm.Continue, true
	case "next", "n":
		d.mode = modeStepOver
		return vm.StepOver, true
	case "quit", "q", "exit":
		return vm.Quit, true

	case "break", "b":
		d.cmdBreak(args, false)
	case "tbreak", "tb":
		d.cmdBreak(args, true)
	case "delete", "d":
		d.cmdDelete(args)
	case "enable":
		d.cmdToggleBreak(args, true)
	case "disable":
		d.cmdToggleBreak(args, false)

	case "watch", "w":
		d.cmdWatch(args)
	case "unwatch":
		d.cmdUnwatch(args)

	case "print", "p":
		d.cmdPrint(args)
	case "list", "l":
		d.cmdList()
	case "backtrace", "bt", "where":
		d.cmdBacktrace()
	case "info", "i":
		d.cmdInfo(args)

	case "help", "h", "?":
		d.cmdHelp()

	default:
		fmt.Fprintf(d.out, "unknown command %q (type 'help')\n", cmd)
	}
	return vm.Continue, false
}

func (d *Debugger) cmdBreak(args []string, temporary bool) {
	if len(args) == 0 {
		fmt.Fprintln(d.out, "usage: break <ir-index>")
		return
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(d.out, "invalid ir index: %s\n", args[0])
		return
	}
	bp := d.breakpoints.AddBreakpoint(idx, temporary)
	fmt.Fprintf(d.out, "breakpoint %d at ir#%d\n", bp.ID, bp.Address)
}

func (d *Debugger) cmdDelete(args []string) {
	if len(args) == 0 {
		d.breakpoints.Clear()
		fmt.Fprintln(d.out, "all breakpoints deleted")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(d.out, "invalid breakpoint id: %s\n", args[0])
		return
	}
	if err := d.breakpoints.DeleteBreakpoint(id); err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	fmt.Fprintf(d.out, "breakpoint %d deleted\n", id)
}

func (d *Debugger) cmdToggleBreak(args []string, enable bool) {
	if len(args) == 0 {
		fmt.Fprintln(d.out, "usage: enable|disable <breakpoint-id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(d.out, "invalid breakpoint id: %s\n", args[0])
		return
	}
	if enable {
		err = d.breakpoints.EnableBreakpoint(id)
	} else {
		err = d.breakpoints.DisableBreakpoint(id)
	}
	if err != nil {
		fmt.Fprintln(d.out, err)
	}
}

// cmdWatch resolves name as a global variable and adds a watchpoint on its
// memory address. Procedure parameters live on the frame stack and are not
// watchable: they have no fixed address across calls.
func (d *Debugger) cmdWatch(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(d.out, "usage: watch <variable>")
		return
	}
	name := args[0]
	entry, ok := d.names.Lookup(name)
	if !ok || entry.Kind != compiler.EntryVar {
		fmt.Fprintf(d.out, "%q is not a known variable\n", name)
		return
	}
	addr := d.machine.DataStart() + len(d.prog.InitData) + entry.VarOffset
	wp := d.watchpoints.AddWatchpoint(name, addr)
	if d.haveView {
		d.watchpoints.CheckWatchpoints(d.lastView) // establish baseline
	}
	fmt.Fprintf(d.out, "watchpoint %d on %s (addr %d)\n", wp.ID, name, addr)
}

func (d *Debugger) cmdUnwatch(args []string) {
	if len(args) == 0 {
		d.watchpoints.Clear()
		fmt.Fprintln(d.out, "all watchpoints deleted")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(d.out, "invalid watchpoint id: %s\n", args[0])
		return
	}
	if err := d.watchpoints.DeleteWatchpoint(id); err != nil {
		fmt.Fprintln(d.out, err)
	}
}

func (d *Debugger) cmdPrint(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(d.out, "usage: print <name>")
		return
	}
	entry, ok := d.names.Lookup(args[0])
	if !ok {
		fmt.Fprintf(d.out, "unknown name %q\n", args[0])
		return
	}
	switch entry.Kind {
	case compiler.EntryConst:
		fmt.Fprintf(d.out, "%s = %d (const)\n", args[0], entry.ConstValue)
	case compiler.EntryVar:
		if !d.haveView {
			fmt.Fprintln(d.out, "program has not started")
			return
		}
		addr := d.machine.DataStart() + len(d.prog.InitData) + entry.VarOffset
		if addr < 0 || addr+8 > len(d.lastView.Memory) {
			fmt.Fprintln(d.out, "variable address out of range")
			return
		}
		v := binary.LittleEndian.Uint64(d.lastView.Memory[addr:])
		fmt.Fprintf(d.out, "%s = %d (%s, addr %d)\n", args[0], v, entry.VarType, addr)
	case compiler.EntryProc:
		fmt.Fprintf(d.out, "%s = %s\n", args[0], entry.String())
	}
}

func (d *Debugger) cmdList() {
	if !d.haveView {
		fmt.Fprintln(d.out, "program has not started")
		return
	}
	ip := d.lastView.IP
	lo := ip - CodeContextLinesBeforeCompact
	if lo < 0 {
		lo = 0
	}
	hi := ip + CodeContextLinesAfterCompact
	if hi >= d.prog.Len() {
		hi = d.prog.Len() - 1
	}
	for i := lo; i <= hi; i++ {
		marker := "  "
		if i == ip {
			marker = "=>"
		}
		if d.breakpoints.HasBreakpoint(i) {
			marker = "b:" + marker[:1]
		}
		instr := d.prog.Instructions[i]
		fmt.Fprintf(d.out, "%s %06d  %-10s %d\n", marker, i, instr.Op, instr.Imm)
	}
}

func (d *Debugger) cmdBacktrace() {
	if !d.haveView {
		fmt.Fprintln(d.out, "program has not started")
		return
	}
	fmt.Fprintf(d.out, "ir#%d, call depth %d, frame base %d, frame top %d\n",
		d.lastView.IP, d.lastView.CallDepth, d.lastView.FP2BP, d.lastView.FP2SP)
}

func (d *Debugger) cmdInfo(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(d.out, "usage: info <breakpoints|watchpoints|stack>")
		return
	}
	switch strings.ToLower(args[0]) {
	case "breakpoints", "b":
		bps := d.breakpoints.GetAllBreakpoints()
		if len(bps) == 0 {
			fmt.Fprintln(d.out, "no breakpoints")
			return
		}
		for _, bp := range bps {
			status := "enabled"
			if !bp.Enabled {
				status = "disabled"
			}
			fmt.Fprintf(d.out, "  %d: ir#%d %s (hit %d)\n", bp.ID, bp.Address, status, bp.HitCount)
		}
	case "watchpoints", "w":
		wps := d.watchpoints.GetAllWatchpoints()
		if len(wps) == 0 {
			fmt.Fprintln(d.out, "no watchpoints")
			return
		}
		for _, wp := range wps {
			fmt.Fprintf(d.out, "  %d: %s = %d (hit %d)\n", wp.ID, wp.Name, wp.LastValue, wp.HitCount)
		}
	case "stack":
		if !d.haveView {
			fmt.Fprintln(d.out, "program has not started")
			return
		}
		vs := d.lastView.ValueStack
		n := StackDisplayWords
		if n > len(vs) {
			n = len(vs)
		}
		for i := len(vs) - 1; i >= len(vs)-n; i-- {
			fmt.Fprintf(d.out, "  [%d] %d\n", i, vs[i])
		}
	default:
		fmt.Fprintf(d.out, "unknown info topic %q\n", args[0])
	}
}

func (d *Debugger) cmdHelp() {
	fmt.Fprintln(d.out, "continue (c)          resume until breakpoint/watchpoint/halt")
	fmt.Fprintln(d.out, "step (s)              execute one instruction")
	fmt.Fprintln(d.out, "next (n)              step over an InternalCall")
	fmt.Fprintln(d.out, "break (b) <ir#>       set a breakpoint at an IR index")
	fmt.Fprintln(d.out, "tbreak (tb) <ir#>     set a one-shot breakpoint")
	fmt.Fprintln(d.out, "delete (d) [id]       delete a breakpoint, or all")
	fmt.Fprintln(d.out, "enable/disable <id>   toggle a breakpoint")
	fmt.Fprintln(d.out, "watch (w) <var>       break when a global variable's value changes")
	fmt.Fprintln(d.out, "unwatch [id]          delete a watchpoint, or all")
	fmt.Fprintln(d.out, "print (p) <name>      print a constant, variable, or procedure")
	fmt.Fprintln(d.out, "list (l)              show IR around the current instruction")
	fmt.Fprintln(d.out, "backtrace (bt)        show call depth and frame pointers")
	fmt.Fprintln(d.out, "info (i) <topic>      breakpoints | watchpoints | stack")
	fmt.Fprintln(d.out, "quit (q)              stop the machine and exit")
}
