package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Daemon lifecycle errors
	ErrCodeAlreadyRunning ErrorCode = "DAEMON_ALREADY_RUNNING"
	ErrCodeLockHeld       ErrorCode = "LOCK_HELD"
	ErrCodeSocketBind     ErrorCode = "SOCKET_BIND"
	ErrCodeDaemonNotFound ErrorCode = "DAEMON_NOT_FOUND"

	// Change source errors
	ErrCodeIPCUnavailable   ErrorCode = "IPC_UNAVAILABLE"
	ErrCodeMixerUnavailable ErrorCode = "MIXER_UNAVAILABLE"
	ErrCodeAttributeMissing ErrorCode = "ATTRIBUTE_MISSING"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// SlateError represents a structured error with context
type SlateError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *SlateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SlateError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *SlateError) WithDetail(key string, value interface{}) *SlateError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *SlateError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new SlateError
func New(code ErrorCode, message string) *SlateError {
	return &SlateError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a SlateError
func Wrap(err error, code ErrorCode, message string) *SlateError {
	return &SlateError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific SlateError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	slateErr, ok := err.(*SlateError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return slateErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	slateErr, ok := err.(*SlateError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return slateErr.Code
}
