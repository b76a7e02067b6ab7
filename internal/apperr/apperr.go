// Package apperr defines the tagged error type shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindDuplicateTitle Kind = "DUPLICATE_TITLE"
	KindNotFound       Kind = "NOT_FOUND"
	KindNoFile         Kind = "NO_FILE"
	KindUnauthorized   Kind = "UNAUTHORIZED"
	KindValidation     Kind = "VALIDATION_ERROR"
	KindConflict       Kind = "CONFLICT"
	KindInternal       Kind = "INTERNAL_ERROR"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func DuplicateTitle() *Error {
	return New(KindDuplicateTitle, "A classroom cannot contain two documents with the same title")
}

func NotFound(message string) *Error { return New(KindNotFound, message) }

func NoFile() *Error { return New(KindNoFile, "No file was sent") }

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

func Validation(message string) *Error { return New(KindValidation, message) }

func Conflict(message string) *Error { return New(KindConflict, message) }

func Internal(message string, err error) *Error { return Wrap(KindInternal, message, err) }

// KindOf reports the kind of err, treating untagged errors as internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message carried by err, or fallback for
// untagged and internal errors.
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return fallback
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
