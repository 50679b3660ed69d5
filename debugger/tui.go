package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/avanasov/stackc/vm"
)

// TUI is a text user interface over a Debugger: a state panel (current
// instruction, call depth, value-stack top), an output log, and a command
// input. It runs the Machine on a background goroutine and drives it
// through the same Debugger.handleCommand dispatch the line-oriented CLI
// uses — commands typed into the input widget flow through a channel that
// stands in for stdin.
type TUI struct {
	dbg *Debugger
	app *tview.Application

	stateView  *tview.TextView
	outputView *tview.TextView
	input      *tview.InputField

	cmdCh chan string
}

// NewTUI builds a TUI over dbg. Call Run to start it.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{
		dbg:   dbg,
		app:   tview.NewApplication(),
		cmdCh: make(chan string),
	}
	t.initializeViews()
	t.buildLayout()
	return t
}

func (t *TUI) initializeViews() {
	t.stateView = tview.NewTextView().SetDynamicColors(true)
	t.stateView.SetBorder(true).SetTitle(" State ")

	t.outputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.outputView.SetBorder(true).SetTitle(" Output ")

	t.input = tview.NewInputField().SetLabel("(dbg) ")
	t.input.SetBorder(true).SetTitle(" Command ")
	t.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := t.input.GetText()
		t.input.SetText("")
		if cmd == "" {
			cmd = "\n"
		}
		t.cmdCh <- cmd
	})
}

func (t *TUI) buildLayout() {
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.stateView, 6, 0, false).
		AddItem(t.outputView, 0, 1, false).
		AddItem(t.input, 3, 0, true)
	t.app.SetRoot(root, true).SetFocus(t.input)
}

// Run starts the machine on a background goroutine, wired to this TUI's
// output panel and command input, and runs the tview event loop on the
// calling goroutine until the user quits.
func (t *TUI) Run() error {
	t.dbg.out = writerFunc(func(p []byte) (int, error) {
		t.app.QueueUpdateDraw(func() {
			fmt.Fprint(t.outputView, string(p))
		})
		return len(p), nil
	})
	t.dbg.nextCommand = func() (string, bool) {
		cmd, ok := <-t.cmdCh
		return cmd, ok
	}
	t.dbg.onStop = t.refreshState

	done := make(chan error, 1)
	go func() {
		done <- t.dbg.machine.Run()
		t.app.QueueUpdateDraw(func() {
			fmt.Fprintln(t.outputView, "program halted")
		})
	}()

	fmt.Fprintln(t.outputView, "stackc debugger — stopped before the first instruction")
	return t.app.Run()
}

func (t *TUI) refreshState(view vm.View) {
	t.app.QueueUpdateDraw(func() {
		t.stateView.Clear()
		fmt.Fprintf(t.stateView, "ir#%d  %s  imm=%d\n", view.IP, view.Instr.Op, view.Instr.Imm)
		fmt.Fprintf(t.stateView, "call depth %d  frame base %d  frame top %d\n", view.CallDepth, view.FP2BP, view.FP2SP)
		top := ""
		if n := len(view.ValueStack); n > 0 {
			var words []string
			for i := n - 1; i >= 0 && i >= n-StackDisplayWords; i-- {
				words = append(words, fmt.Sprintf("%d", view.ValueStack[i]))
			}
			top = strings.Join(words, " ")
		}
		fmt.Fprintf(t.stateView, "value stack (top first): %s\n", top)
	})
}

// Stop terminates the TUI application.
func (t *TUI) Stop() {
	t.app.Stop()
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
