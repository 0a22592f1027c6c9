package npm

import "errors"

// ErrNpmNotFound is wrapped by the ExecutionFailure returned when no npm
// executable can be located.
var ErrNpmNotFound = errors.New("npm executable not found")

// ExecutionFailure is an unrecoverable failure: the operation cannot run at
// all. Every other problem is logged and reported through Result instead.
type ExecutionFailure struct {
	Message string
	Err     error
}

func (e *ExecutionFailure) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ExecutionFailure) Unwrap() error {
	return e.Err
}

// IsExecutionFailure reports whether err is or wraps an ExecutionFailure.
func IsExecutionFailure(err error) bool {
	var failure *ExecutionFailure
	return errors.As(err, &failure)
}
