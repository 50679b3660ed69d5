// Package debugger implements an interactive, source-level front end over
// a running vm.Machine: breakpoints keyed by IR instruction index,
// watchpoints on global variables, a line-oriented command interpreter, and
// a tcell/tview text UI built on the same command dispatch.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/avanasov/stackc/compiler"
	"github.com/avanasov/stackc/ir"
	"github.com/avanasov/stackc/vm"
)

// stepMode is the debugger's current execution disposition, consulted by
// the pre-step callback to decide whether to stop at the next instruction.
type stepMode int

const (
	modeStep stepMode = iota
	modeStepOver
	modeContinue
)

// Debugger wraps a Machine with breakpoints, watchpoints, and an
// interactive command loop driven through the Machine's pre-step hook. The
// hook runs synchronously inside Machine.Run, so a stop is implemented by
// blocking in place reading further commands until the user resumes
// execution. RunCLI does this on the calling goroutine; RunTUI runs the
// Machine on a background goroutine and feeds commands through a channel.
type Debugger struct {
	machine *vm.Machine
	prog    *ir.Program
	names   *compiler.Names

	breakpoints *BreakpointManager
	watchpoints *WatchpointManager
	history     []string

	mode        stepMode
	lastCommand string
	lastView    vm.View
	haveView    bool

	in  *bufio.Reader
	out io.Writer

	// nextCommand supplies one command line at a time to repl. RunCLI
	// points it at stdin; RunTUI points it at a channel fed by the
	// command input widget, so the same repl/handleCommand logic drives
	// both front ends.
	nextCommand func() (string, bool)

	// onStop, if set, is invoked after a stop reason is printed and before
	// repl starts blocking — the TUI uses it to refresh its state panel.
	onStop func(vm.View)
}

// New builds a Debugger over machine, wiring its pre-step callback.
func New(machine *vm.Machine, prog *ir.Program, names *compiler.Names) *Debugger {
	d := &Debugger{
		machine:     machine,
		prog:        prog,
		names:       names,
		breakpoints: NewBreakpointManager(),
		watchpoints: NewWatchpointManager(),
		mode:        modeStep,
	}
	machine.SetPreStep(d.preStep)
	return d
}

// RunCLI drives the line-oriented debugger: it prints a banner and starts the
// machine, which stops before the first instruction. Stops (single-step, breakpoint,
// watchpoint) are handled from inside preStep, which blocks on further
// input from in until the user issues a command that resumes execution.
func (d *Debugger) RunCLI(in io.Reader, out io.Writer) error {
	d.in = bufio.NewReader(in)
	d.out = out
	d.nextCommand = d.readFromStdin

	fmt.Fprintln(d.out, "stackc debugger — stopped before the first instruction")
	fmt.Fprintln(d.out, "type 'help' for a command list")

	if err := d.machine.Run(); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "program halted")
	return nil
}

// preStep is invoked by the Machine before every instruction. It decides,
// based on the current stepMode and any breakpoints/watchpoints, whether
// execution should pause; if so it prints the stop reason and enters an
// interactive command loop that blocks until the user chooses how to
// resume.
func (d *Debugger) preStep(view vm.View) vm.StepAction {
	d.lastView = view
	d.haveView = true

	reason := ""
	switch d.mode {
	case modeStep, modeStepOver:
		reason = "step"
	case modeContinue:
		if bp := d.breakpoints.GetBreakpoint(view.IP); bp != nil && bp.Enabled {
			d.breakpoints.ProcessHit(view.IP)
			reason = fmt.Sprintf("breakpoint %d", bp.ID)
		} else if wp, changed := d.watchpoints.CheckWatchpoints(view); changed {
			reason = fmt.Sprintf("watchpoint %d (%s): now %d", wp.ID, wp.Name, wp.LastValue)
		}
	}
	if reason == "" {
		return vm.Continue
	}

	fmt.Fprintf(d.out, "%s at ir#%d: %s\n", reason, view.IP, view.Instr.Op)
	if d.onStop != nil {
		d.onStop(view)
	}
	return d.repl()
}

// repl reads and dispatches commands until one of them resumes execution,
// returning the vm.StepAction that achieves the requested resumption.
func (d *Debugger) repl() vm.StepAction {
	for {
		fmt.Fprint(d.out, "(dbg) ")
		line, ok := d.nextCommand()
		if !ok {
			return vm.Quit
		}
		line = strings.TrimSpace(line)
		if line == "" {
			line = d.lastCommand
		}
		if line != "" {
			d.recordHistory(line)
			d.lastCommand = line
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		action, resume := d.handleCommand(fields[0], fields[1:])
		if resume {
			return action
		}
	}
}

// recordHistory appends cmd to the session's command history, skipping an
// immediate repeat of the last entry so holding Enter doesn't fill the log
// with one command over and over.
func (d *Debugger) recordHistory(cmd string) {
	if n := len(d.history); n > 0 && d.history[n-1] == cmd {
		return
	}
	d.history = append(d.history, cmd)
}

// readFromStdin is the default nextCommand source for RunCLI.
func (d *Debugger) readFromStdin() (string, bool) {
	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return line, true
}
