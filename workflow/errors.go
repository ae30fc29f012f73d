package workflow

import (
	"errors"
	"fmt"
)

// Kind classifies workflow failures so transports can choose a status code
// without inspecting message text.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidTransition
	KindValidation
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindValidation:
		return "validation"
	case KindDependency:
		return "dependency_failure"
	default:
		return "internal"
	}
}

// Error is returned by every workflow operation that fails for a reason the
// caller can act on. Message is shown to end users as-is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func InvalidTransition(format string, args ...any) *Error {
	return newError(KindInvalidTransition, format, args...)
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// Dependency wraps a failed side effect (notification, email, audit).
func Dependency(err error, format string, args ...any) *Error {
	e := newError(KindDependency, format, args...)
	e.Err = err
	return e
}

// KindOf reports the Kind of err, or KindInternal when err is not a *Error.
func KindOf(err error) Kind {
	var wfErr *Error
	if errors.As(err, &wfErr) {
		return wfErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
