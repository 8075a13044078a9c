// Package errors provides structured error types for nabs.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP surface
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: input validation failures
//   - *_NOT_FOUND: resource not found
//   - INTERNAL_*: broken invariants, never user input
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidTargetName, "target name cannot be empty")
//	if errors.Is(err, errors.ErrCodeInvalidTargetName) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeManifestParse, origErr, "bad Cargo.toml in %s", name)
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
	ErrCodeInvalidTargetName Code = "INVALID_TARGET_NAME"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodePathEscapes       Code = "PATH_OUTSIDE_WORKSPACE"

	// Inference errors
	ErrCodeNoBuildSystem Code = "NO_BUILD_SYSTEM"
	ErrCodeAmbiguous     Code = "AMBIGUOUS_BUILD_SYSTEM"
	ErrCodeCycle         Code = "DEPENDENCY_CYCLE"
	ErrCodeManifestParse Code = "MANIFEST_PARSE"

	// Resource errors
	ErrCodeWorkspaceNotFound Code = "WORKSPACE_NOT_FOUND"
	ErrCodeTargetNotFound    Code = "TARGET_NOT_FOUND"
	ErrCodeIO                Code = "IO_ERROR"

	// Internal errors
	ErrCodeCorrupted Code = "INTERNAL_CORRUPTION"
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
