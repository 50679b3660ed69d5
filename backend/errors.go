package backend

import (
	"fmt"

	"github.com/avanasov/stackc/diag"
)

// EmitError provides located context for a failure raised while lowering IR
// to a target. It names the offending instruction's source location and the
// underlying error, mirroring the diagnostic shape used elsewhere in the
// pipeline.
type EmitError struct {
	Loc     diag.Location
	Message string
	Wrapped error
}

func (e *EmitError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Loc, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}

func (e *EmitError) Unwrap() error { return e.Wrapped }
