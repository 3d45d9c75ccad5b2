package base

import (
	"errors"
	"fmt"
)

// FatalError is returned by a transport when a system call failed in a way the server
// cannot recover from. Op names the failing call (e.g. "bind", "epoll_wait").
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a *FatalError for op
func Fatal(op string, err error) error {
	return &FatalError{Op: op, Err: err}
}

// IsFatal reports whether err (or any error it wraps) is a *FatalError
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
