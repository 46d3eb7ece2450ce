// Package errors provides structured error types for tallylog.
//
// This package defines custom error types that provide better error handling
// and error categorization, so that startup failures can be reported with a
// consistent shape and mapped to process exit codes in one place.
package errors

import (
	"fmt"
	"os"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeInternal ErrorType = "internal"
)

// TallyError is the base error type for all tallylog errors
type TallyError struct {
	Type       ErrorType
	Code       string
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *TallyError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Type, e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TallyError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches another error
func (e *TallyError) Is(target error) bool {
	if t, ok := target.(*TallyError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// ExitCode returns the process exit status for the error. Every fatal
// startup error maps to 1; a graceful shutdown never reaches here.
func (e *TallyError) ExitCode() int {
	return 1
}

// Common error constructors

// ConfigError creates a configuration/validation error
func ConfigError(code, message string, underlying error) *TallyError {
	return &TallyError{
		Type:       ErrorTypeConfig,
		Code:       code,
		Message:    message,
		Underlying: underlying,
	}
}

// IOError creates a file or write error
func IOError(code, message string, underlying error) *TallyError {
	return &TallyError{
		Type:       ErrorTypeIO,
		Code:       code,
		Message:    message,
		Underlying: underlying,
	}
}

// InternalError creates an internal error
func InternalError(code, message string, underlying error) *TallyError {
	return &TallyError{
		Type:       ErrorTypeInternal,
		Code:       code,
		Message:    message,
		Underlying: underlying,
	}
}

// Predefined error instances

var (
	ErrInvalidWorkerCount = ConfigError("INVALID_WORKER_COUNT", "Worker count must be a positive integer", nil)
	ErrInvalidInterval    = ConfigError("INVALID_INTERVAL", "Sleep interval must be non-negative", nil)
	ErrMissingLogPath     = ConfigError("MISSING_LOG_PATH", "Log file path is required", nil)

	ErrSinkOpen   = IOError("SINK_OPEN", "Cannot open log file for append", nil)
	ErrSinkClosed = IOError("SINK_CLOSED", "Log sink is closed", nil)
	ErrSinkWrite  = IOError("SINK_WRITE", "Write to log sink failed", nil)
)

// ClassifyError attempts to classify a standard Go error into a tallylog error
func ClassifyError(err error) *TallyError {
	if err == nil {
		return nil
	}

	// Check if it's already a tallylog error
	if tErr, ok := err.(*TallyError); ok {
		return tErr
	}

	switch {
	case os.IsNotExist(err):
		return IOError("FILE_NOT_FOUND", "File not found", err)
	case os.IsPermission(err):
		return IOError("PERMISSION_DENIED", "Permission denied", err)
	default:
		return InternalError("UNKNOWN_ERROR", "Unknown error", err)
	}
}

// IsConfigError checks whether err is a configuration error
func IsConfigError(err error) bool {
	if tErr, ok := err.(*TallyError); ok {
		return tErr.Type == ErrorTypeConfig
	}
	return false
}

// IsIOError checks whether err is an I/O error
func IsIOError(err error) bool {
	if tErr, ok := err.(*TallyError); ok {
		return tErr.Type == ErrorTypeIO
	}
	return false
}
