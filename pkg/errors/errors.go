package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for the reconciliation error taxonomy
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"
	ErrFS       ErrorCode = "FS_ERROR"

	// Configuration errors, raised before any filesystem access
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrDuplicatePath ErrorCode = "DUPLICATE_PATH"
	ErrNoDirectory   ErrorCode = "NO_DIRECTORY"

	// Drift conflicts, raised during detection
	ErrPathExists ErrorCode = "PATH_EXISTS"
	ErrWrongKind  ErrorCode = "WRONG_KIND"

	// Commit-phase precondition violations
	ErrFileMissing ErrorCode = "FILE_MISSING"
)

// RunitError represents a structured error with code and details
type RunitError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RunitError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RunitError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RunitError) Is(target error) bool {
	var targetErr *RunitError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RunitError with the given code and message
func New(code ErrorCode, message string) *RunitError {
	return &RunitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RunitError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RunitError {
	return &RunitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RunitError
func Wrap(err error, code ErrorCode, message string) *RunitError {
	if err == nil {
		return nil
	}
	return &RunitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RunitError {
	if err == nil {
		return nil
	}
	return &RunitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RunitError) WithDetail(key string, value interface{}) *RunitError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var runitErr *RunitError
	if errors.As(err, &runitErr) {
		return runitErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if
// the error is not a RunitError
func GetErrorCode(err error) ErrorCode {
	var runitErr *RunitError
	if errors.As(err, &runitErr) {
		return runitErr.Code
	}
	return ErrUnknown
}
