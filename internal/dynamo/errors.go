package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state or output that became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDtMismatch indicates the plant and the controller disagree on the step.
	ErrDtMismatch = errors.New("dynamo: plant and controller time steps differ")

	// ErrUnknownParam indicates a Configurable was asked for a name it does not own.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// BoundsError returns an ErrParameterBounds error naming the offending value.
func BoundsError(name string, value float64) error {
	return fmt.Errorf("%w: %s=%v", ErrParameterBounds, name, value)
}
