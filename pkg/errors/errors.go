package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Identity errors
	ErrDuplicateIdentifier ErrorCode = "DUPLICATE_IDENTIFIER"
	ErrValueIdentified     ErrorCode = "VALUE_IDENTIFIED"
	ErrNotIdentified       ErrorCode = "NOT_IDENTIFIED"

	// Wiring errors
	ErrKindCollision ErrorCode = "KIND_COLLISION"
	ErrResolution    ErrorCode = "RESOLUTION_FAILED"
	ErrNoSuchKind    ErrorCode = "NO_SUCH_KIND"

	// Definition errors
	ErrDefinitionInvalid ErrorCode = "DEFINITION_INVALID"
	ErrDefinitionLoad    ErrorCode = "DEFINITION_LOAD"
	ErrDefinitionParse   ErrorCode = "DEFINITION_PARSE"
	ErrElementName       ErrorCode = "ELEMENT_NAME_INVALID"

	// Markup errors
	ErrMarkupParse ErrorCode = "MARKUP_PARSE"
)

// WireError represents a structured error with code and details
type WireError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *WireError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *WireError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *WireError) Is(target error) bool {
	var targetErr *WireError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new WireError with the given code and message
func New(code ErrorCode, message string) *WireError {
	return &WireError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new WireError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *WireError {
	return &WireError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a WireError
func Wrap(err error, code ErrorCode, message string) *WireError {
	if err == nil {
		return nil
	}
	return &WireError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *WireError {
	if err == nil {
		return nil
	}
	return &WireError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *WireError) WithDetail(key string, value interface{}) *WireError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var wireErr *WireError
	if errors.As(err, &wireErr) {
		return wireErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a WireError
func GetErrorCode(err error) ErrorCode {
	var wireErr *WireError
	if errors.As(err, &wireErr) {
		return wireErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a WireError
func GetErrorDetails(err error) map[string]interface{} {
	var wireErr *WireError
	if errors.As(err, &wireErr) {
		return wireErr.Details
	}
	return nil
}
