package ftl

import (
	"fmt"

	derr "github.com/MelvinKr/skybh/crew-compliance/internal/domain/errors"
)

// PreconditionError reports a malformed call. It is never used for a
// non-compliant verdict, which is a normal result.
type PreconditionError struct {
	Field  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("ftl: invalid %s: %s", e.Field, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return derr.ErrInvalidInput
}

func preconditionf(field, format string, args ...any) error {
	return &PreconditionError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
