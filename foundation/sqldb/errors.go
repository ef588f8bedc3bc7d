package sqldb

import (
	"errors"
	"fmt"
)

// Set of error kinds returned by the package. Use errors.Is against these
// values to classify a failure.
var (
	ErrConnection    = errors.New("connection failure")
	ErrExecution     = errors.New("execution failure")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInsert = errors.New("invalid insert")
)

// Error is used to pass a failure out of the package with the operation
// that detected it. The underlying driver error is kept so callers can
// inspect it with errors.As.
type Error struct {
	Kind error
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
}

// Unwrap provides access to the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// GetError returns the package error from the chain, or nil if the
// error did not originate here.
func GetError(err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}
	return e
}
