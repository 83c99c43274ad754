// Package errors provides domain-specific errors for the parley application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrMissingCredentials  = errors.New("provider credentials missing")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrClientInit          = errors.New("provider client initialization failed")
	ErrGeneration          = errors.New("response generation failed")
	ErrTokenizerLookup     = errors.New("no tokenizer registered for model")
	ErrPersistence         = errors.New("chat history persistence failed")
	ErrInvalidRole         = errors.New("invalid message role")
	ErrSessionNotFound     = errors.New("session not found")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation  ErrorCode = "VALIDATION"
	CodeNotFound    ErrorCode = "NOT_FOUND"
	CodeProvider    ErrorCode = "PROVIDER"
	CodePersistence ErrorCode = "PERSISTENCE"
	CodeConfig      ErrorCode = "CONFIG"
)

// ParleyError wraps errors with additional context for debugging and handling.
type ParleyError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *ParleyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *ParleyError) Unwrap() error {
	return e.Cause
}

// NewError creates a new ParleyError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *ParleyError {
	return &ParleyError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Is reports whether err matches target using errors.Is semantics.
// This is a convenience wrapper around the standard library's errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target and sets target to that error value.
// This is a convenience wrapper around the standard library's errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
