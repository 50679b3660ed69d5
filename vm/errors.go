package vm

import (
	"fmt"

	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/ir"
)

// RuntimeError is a located failure raised during execution: stack
// underflow, an out-of-range memory access, frame-stack under/overflow,
// divide-by-zero, an unsupported instruction, or an external/syscall
// attempted in interpret mode.
type RuntimeError struct {
	Loc     diag.Location
	Op      ir.Op
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Loc, e.Op, e.Message)
}

func newRuntimeError(loc diag.Location, op ir.Op, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Loc: loc, Op: op, Message: fmt.Sprintf(format, args...)}
}
