package eligibility

import (
	"fmt"

	derr "github.com/MelvinKr/skybh/crew-compliance/internal/domain/errors"
)

type PolicyError struct {
	Field string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("eligibility: invalid policy field %s", e.Field)
}

func (e *PolicyError) Unwrap() error {
	return derr.ErrInvalidInput
}
