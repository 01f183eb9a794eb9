package rate

import (
	"errors"
	"fmt"
)

// Error codes for the three failure kinds of a rate check
const (
	ErrCodePrecondition = "PRECONDITION_FAILED"
	ErrCodeInvariant    = "INVARIANT_VIOLATED"
	ErrCodeSource       = "RATE_SOURCE_FAILED"
)

// Sentinels for errors.Is; matching is by code only.
var (
	ErrPrecondition = &Error{Code: ErrCodePrecondition}
	ErrInvariant    = &Error{Code: ErrCodeInvariant}
	ErrSource       = &Error{Code: ErrCodeSource}
)

// Error is a coded failure. The cause, if any, is kept for errors.Unwrap.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func ErrPreconditionFailed(format string, args ...any) error {
	return &Error{
		Code:    ErrCodePrecondition,
		Message: fmt.Sprintf(format, args...),
	}
}

func ErrInvariantViolated(format string, args ...any) error {
	return &Error{
		Code:    ErrCodeInvariant,
		Message: fmt.Sprintf(format, args...),
	}
}

func ErrSourceFailed(cause error) error {
	return &Error{
		Code:    ErrCodeSource,
		Message: "rate source call failed",
		cause:   cause,
	}
}

// Code returns the error code of err, or "" if err is not a rate error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
