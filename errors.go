package backend

import "fmt"

// Error is the single error kind surfaced by backends. Transport failures,
// rejected API calls, unsupported record types and missing identifiers all
// map to it, callers can only distinguish causes via the message text.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf creates a new backend Error using the passed format and args.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether the passed error is a backend Error.
func IsError(err error) bool {
	_, ok := err.(*Error)
	return ok
}
