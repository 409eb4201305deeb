// Package cerror holds the internal error type used across the module.
package cerror

import "fmt"

type Error struct {
	Err string
}

// New returns a new Error with the given formatted message.
func New(format string, args ...interface{}) *Error {
	return &Error{Err: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Err
}
