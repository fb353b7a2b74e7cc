// Package apperror defines the error taxonomy shared by the store, service and
// HTTP layers.
//
// Every domain failure is an *AppError wrapping one of the sentinel errors
// below. Callers classify errors with errors.Is against the sentinel and read
// the human-readable Message for the response body:
//
//	if errors.Is(err, apperror.ErrDuplicate) { ... }
//
// The HTTP layer owns the sentinel → status code mapping (see handler.writeError).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrDuplicate       = errors.New("duplicate membership")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInconsistent marks a violated referential invariant, e.g. a prompt
	// whose category row no longer exists. It should never happen in correct
	// operation and is surfaced as a 500.
	ErrInconsistent = errors.New("internal consistency error")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// NotFoundMessage is NotFound with a caller-chosen message, used where the
// response text is part of the contract ("Favorite not found").
func NotFoundMessage(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports that a (user, prompt) membership is already present.
func Duplicate(message string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: message,
	}
}

func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Inconsistent reports a broken reference from one entity to another.
func Inconsistent(format string, args ...any) *AppError {
	return &AppError{
		Err:     ErrInconsistent,
		Message: fmt.Sprintf(format, args...),
	}
}
