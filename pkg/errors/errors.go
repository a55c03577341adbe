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

	// Environment errors
	ErrRuntimeVersion ErrorCode = "RUNTIME_VERSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Manifest errors
	ErrRouteConflict    ErrorCode = "ROUTE_CONFLICT"
	ErrManifestGenerate ErrorCode = "MANIFEST_GENERATE"
	ErrManifestWrite    ErrorCode = "MANIFEST_WRITE"

	// Entrypoint errors
	ErrEntrypointConflict ErrorCode = "ENTRYPOINT_CONFLICT"

	// Plugin errors
	ErrPluginConflict ErrorCode = "PLUGIN_CONFLICT"
	ErrPluginParse    ErrorCode = "PLUGIN_PARSE"

	// Toolchain errors
	ErrFormatter ErrorCode = "FORMATTER"
	ErrBundler   ErrorCode = "BUNDLER"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// AtollError represents a structured error with code and details
type AtollError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *AtollError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AtollError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *AtollError) Is(target error) bool {
	var targetErr *AtollError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new AtollError with the given code and message
func New(code ErrorCode, message string) *AtollError {
	return &AtollError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new AtollError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AtollError {
	return &AtollError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an AtollError
func Wrap(err error, code ErrorCode, message string) *AtollError {
	if err == nil {
		return nil
	}
	return &AtollError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AtollError {
	if err == nil {
		return nil
	}
	return &AtollError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *AtollError) WithDetail(key string, value interface{}) *AtollError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *AtollError) WithDetails(details map[string]interface{}) *AtollError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var atollErr *AtollError
	if errors.As(err, &atollErr) {
		return atollErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an AtollError
func GetErrorCode(err error) ErrorCode {
	var atollErr *AtollError
	if errors.As(err, &atollErr) {
		return atollErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an AtollError
func GetErrorDetails(err error) map[string]interface{} {
	var atollErr *AtollError
	if errors.As(err, &atollErr) {
		return atollErr.Details
	}
	return nil
}
