// Package errors provides structured error types for kintree.
//
// Errors carry a machine-readable [Code] so that the CLI, the HTTP API and the
// core can agree on how a failure is handled:
//
//   - REFERENCE: a relationship field points at a member that does not exist.
//     Recovered by the layout engine (the reference is treated as absent).
//   - DEGENERATE_BOUNDS: there is nothing to fit into the viewport.
//     Auto-fit becomes a no-op.
//   - MALFORMED_CONFIG: stored view configuration could not be parsed.
//     The view falls back to a default title and identity transforms.
//   - INVALID_INPUT, NOT_FOUND, INTERNAL, UNSUPPORTED: store, CLI and API errors.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "member %s not found", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // 404
//	}
//
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "save member %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Recovered inside the layout and viewport core
	ErrCodeReference        Code = "REFERENCE"
	ErrCodeDegenerateBounds Code = "DEGENERATE_BOUNDS"
	ErrCodeMalformedConfig  Code = "MALFORMED_CONFIG"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidMember Code = "INVALID_MEMBER"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeMemberNotFound Code = "MEMBER_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNotFound reports whether err carries one of the not-found codes.
func IsNotFound(err error) bool {
	return Is(err, ErrCodeNotFound) || Is(err, ErrCodeMemberNotFound)
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
