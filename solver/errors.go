package solver

import (
	"errors"
	"fmt"
)

// Sentinel errors of the transient loop. Eigensolver failures surface as
// eigen.ErrSingularSystem through the StepError chain.
var (
	// ErrConfiguration marks invalid construction-time configuration.
	// Raised at initialization only, fatal, never retried.
	ErrConfiguration = errors.New("solver: invalid configuration")

	// ErrDivergence marks a non-finite temperature or flux detected at a
	// step boundary.
	ErrDivergence = errors.New("solver: non-finite temperature or flux")
)

// StepError wraps the fatal error that halted the transient, with the
// step index and simulation time at which it was raised. The Result
// returned alongside it carries the partial power history and the last
// valid state.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("solver: step %d (t=%.6g): %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
