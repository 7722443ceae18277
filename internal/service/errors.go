package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service error for HTTP mapping at the boundary.
type Kind int

const (
	KindUnexpected Kind = iota // 500
	KindValidation             // 400
	KindNotFound               // 404
	KindForbidden              // 403
	KindConflict               // 409
)

// Error is the discriminated error every service operation returns on
// failure: a kind, a human-readable message and an optional detail
// payload surfaced to the caller.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid builds a validation (400) error.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found (404) error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a forbidden (403) error.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict (409) error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Unexpected wraps a storage or infrastructure failure (500). The
// wrapped error is logged server-side; callers only see the message.
func Unexpected(err error, format string, args ...any) *Error {
	return &Error{Kind: KindUnexpected, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithDetails attaches a detail payload to the error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// KindOf extracts the kind of a service error; plain errors map to
// KindUnexpected.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnexpected
}

// AsError extracts the *Error from err when present.
func AsError(err error) (*Error, bool) {
	var se *Error
	ok := errors.As(err, &se)
	return se, ok
}
