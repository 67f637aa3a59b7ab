// Package errors provides structured error types for the agmerge engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library surface
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - FILE_NOT_FOUND / PARSE_ERROR: load failures
//   - NO_ANCHORS / INSUFFICIENT_ANCHORS: alignment degradation (non-fatal)
//   - DANGLING_REFERENCE / CORRUPT_FLOOR: structural corruption inside one
//     floor export
//   - INTERNAL_ERROR: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDanglingReference, "way %s references unknown node %s", wayID, ref)
//	if errors.Is(err, errors.ErrCodeDanglingReference) {
//	    // Skip this floor, keep merging the rest
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "load %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Load errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeParse        Code = "PARSE_ERROR"

	// Alignment degradation; the floor merges unmoved
	ErrCodeNoAnchors           Code = "NO_ANCHORS"
	ErrCodeInsufficientAnchors Code = "INSUFFICIENT_ANCHORS"

	// Structural corruption inside one floor export
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"
	ErrCodeCorruptFloor      Code = "CORRUPT_FLOOR"

	// Passage synthesis
	ErrCodeCenterPoint Code = "CENTER_POINT"

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
