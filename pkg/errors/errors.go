// Package errors provides structured error types for gangsheet.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Per-request diagnostics that do not abort a whole montage run
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - EMPTY_*: Inputs or results without any usable content
//   - DECODE_FAILURE: Asset bytes that no registered decoder understands
//   - OVERSIZED_ITEM: Informational, an item wider than the roll
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRequest, "copies must be >= 1, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidRequest) {
//	    // Skip the request and continue the batch
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecodeFailure, origErr, "decode %s", name)
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
	ErrCodeInvalidRequest  Code = "INVALID_REQUEST"
	ErrCodeInvalidCategory Code = "INVALID_CATEGORY"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Asset errors
	ErrCodeEmptyAsset    Code = "EMPTY_ASSET"
	ErrCodeDecodeFailure Code = "DECODE_FAILURE"
	ErrCodeAssetTooLarge Code = "ASSET_TOO_LARGE"

	// Layout diagnostics
	ErrCodeOversizedItem Code = "OVERSIZED_ITEM"
	ErrCodeEmptyResult   Code = "EMPTY_RESULT"

	// Resource errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsPerRequest reports whether err describes a problem with one input request
// that the batch can skip, as opposed to a failure of the whole run.
func IsPerRequest(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidRequest, ErrCodeInvalidCategory, ErrCodeEmptyAsset,
		ErrCodeDecodeFailure, ErrCodeAssetTooLarge:
		return true
	}
	return false
}
