package sweep

import (
	"errors"
	"fmt"
)

//////
// Errors.
//////

var (
	// ErrMalformedSpecification is returned when an expanded task does not
	// alternate string names and values. Fatal.
	ErrMalformedSpecification = errors.New("malformed specification")

	// ErrValueFormat is returned when a value has no canonical rendering.
	// Fatal.
	ErrValueFormat = errors.New("unsupported value")

	// ErrConfiguration is returned before any dispatch when the run
	// configuration is invalid.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTaskExecution marks the failure of a task function.
	ErrTaskExecution = errors.New("task execution failed")
)

// Failure records a unit of work whose task function failed.
type Failure struct {
	// Index of the unit.
	Index int

	// Name is the spaced rendering of the unit's parameters.
	Name string

	// Err is what the task function returned, or the recovered panic.
	Err error
}

// String implements fmt.Stringer.
func (f Failure) String() string {
	return fmt.Sprintf("#%d [%s]: %v", f.Index, f.Name, f.Err)
}

// TaskError is returned by Run in fail-fast mode. It matches
// ErrTaskExecution with errors.Is and unwraps to the task's own error.
type TaskError struct {
	Failure
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTaskExecution, e.Failure)
}

// Unwrap exposes both the sentinel and the task's error.
func (e *TaskError) Unwrap() []error {
	return []error{ErrTaskExecution, e.Err}
}

// panicError wraps a value recovered from a panicking task function.
type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}
