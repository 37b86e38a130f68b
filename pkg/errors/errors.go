// Package errors provides structured error types for dbtlineage.
//
// Errors carry a machine-readable [Code] so the CLI can tell a missing
// precondition (a manifest that was never generated) apart from a broken
// manifest or an internal failure, and print the right message for each.
//
// # Error Codes
//
//   - INVALID_*: input or configuration that cannot be used
//   - FILE_NOT_FOUND: a precondition file is absent
//   - RENDER_FAILED: an output backend could not produce an artifact
//   - INTERNAL_ERROR: anything unexpected
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidProfile, "unknown profile %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidProfile) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, cause, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidProfile  Code = "INVALID_PROFILE"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Output errors
	ErrCodeRenderFailed Code = "RENDER_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// MissingFileError describes a precondition file that does not exist,
// together with the command that produces it.
type MissingFileError struct {
	Path string // Path that was checked
	Hint string // Actionable next step, e.g. "Please run 'dbt docs generate' first."
}

// Error implements the error interface.
func (e *MissingFileError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("file not found at %s (%s)", e.Path, e.Hint)
	}
	return fmt.Sprintf("file not found at %s", e.Path)
}

// Code returns the error code for this error type.
func (e *MissingFileError) Code() Code {
	return ErrCodeFileNotFound
}

// NotFound wraps a MissingFileError in an *Error with ErrCodeFileNotFound,
// so callers can test it with [Is] and still recover the path with errors.As.
func NotFound(path, hint string) *Error {
	return &Error{
		Code:    ErrCodeFileNotFound,
		Message: fmt.Sprintf("file not found at %s", path),
		Cause:   &MissingFileError{Path: path, Hint: hint},
	}
}
