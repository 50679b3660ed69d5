package vm

import "github.com/avanasov/stackc/ir"

// StepAction is the disposition a pre-step callback returns.
type StepAction int

const (
	Continue StepAction = iota
	StepOver
	Quit
)

// View is a read-only window onto VM state, handed to a pre-step callback.
// It never exposes mutation: a debugger front end inspects, it does not
// drive, except through the StepAction it returns.
type View struct {
	IP         int
	Instr      ir.Instruction
	ValueStack []uint64
	Memory     []byte
	FP2SP      int
	FP2BP      int
	CallDepth  int
	Names      *SymbolView
}

// SymbolView is the minimal symbol-table surface a debugger needs; vm does
// not import compiler to avoid a cycle. Machine has no way to be given a
// SymbolView, so View.Names is nil in every View a pre-step callback
// receives.
type SymbolView struct {
	Resolve func(name string) (string, bool)
}

// PreStepFunc is invoked before every instruction when installed. Returning
// StepOver makes the VM remember the current call depth and suppress
// further callbacks until depth drops to or below it.
type PreStepFunc func(View) StepAction
