// Package errors provides structured error types for the heatmap application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Recoverable warnings that degrade output instead of failing it
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Configuration and input validation failures (fatal)
//   - NOT_FOUND_*: Resource not found
//   - DEGRADED_*: Recoverable conditions reported as warnings
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGridSize, "grid size must be positive, got %d", n)
//	if errors.IsConfigError(err) {
//	    // reject the request before any computation
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidPoints, origErr, "line %d", line)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidGridSize   Code = "INVALID_GRID_SIZE"
	ErrCodeInvalidRamp       Code = "INVALID_RAMP"
	ErrCodeInvalidAlpha      Code = "INVALID_ALPHA"
	ErrCodeInvalidFalloff    Code = "INVALID_FALLOFF"
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidResample   Code = "INVALID_RESAMPLE"

	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPoints Code = "INVALID_POINTS"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Recoverable conditions
	ErrCodeDegradedResource Code = "DEGRADED_RESOURCE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// configCodes are the codes that make up the configuration error class.
var configCodes = map[Code]bool{
	ErrCodeInvalidConfig:     true,
	ErrCodeInvalidGridSize:   true,
	ErrCodeInvalidRamp:       true,
	ErrCodeInvalidAlpha:      true,
	ErrCodeInvalidFalloff:    true,
	ErrCodeInvalidDimensions: true,
	ErrCodeInvalidFormat:     true,
	ErrCodeInvalidResample:   true,
}

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

// IsConfigError reports whether err is a configuration error.
// Configuration errors are fatal and raised before any grid computation.
func IsConfigError(err error) bool {
	return configCodes[GetCode(err)]
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

// Warning is a recoverable condition. The operation that produced it still
// succeeded, with degraded output.
type Warning struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Degraded creates a DEGRADED_RESOURCE warning.
func Degraded(format string, args ...any) Warning {
	return Warning{Code: ErrCodeDegradedResource, Message: fmt.Sprintf(format, args...)}
}
