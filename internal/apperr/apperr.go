package apperr

// Package apperr defines the typed, recoverable error taxonomy of the core.
// Every error carries a stable machine-readable code; the HTTP layer maps
// codes to transport responses and never exposes internal detail.

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error code.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeForbidden    Code = "FORBIDDEN"
	CodeConflict     Code = "CONFLICT"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Error is a typed application error.
type Error struct {
	Code    Code
	Message string
	// Err is the wrapped cause, if any. Internal causes are logged, never
	// surfaced to callers.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports an absent document/category/version/user.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports insufficient permission or role.
func Forbidden(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation such as a duplicate name.
func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput reports a rejected argument.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected repository-layer error behind a generic code.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

// CodeOf extracts the code from err, or CodeInternal for untyped errors.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// Is lets errors.Is match two apperr errors by code, so sentinel-style
// comparisons in tests work without comparing messages.
func (e *Error) Is(target error) bool {
	var ae *Error
	if errors.As(target, &ae) {
		return e.Code == ae.Code
	}
	return false
}

func IsNotFound(err error) bool     { return CodeOf(err) == CodeNotFound }
func IsForbidden(err error) bool    { return CodeOf(err) == CodeForbidden }
func IsConflict(err error) bool     { return CodeOf(err) == CodeConflict }
func IsInvalidInput(err error) bool { return CodeOf(err) == CodeInvalidInput }
