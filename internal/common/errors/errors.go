// Package errors provides the standardized error type used at every
// gateway boundary and the table that classifies its codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"

	ErrCodeInvocationFailed  ErrorCode = "INVOCATION_FAILED"
	ErrCodeInvocationTimeout ErrorCode = "INVOCATION_TIMEOUT"
	ErrCodeOutputInvalid     ErrorCode = "OUTPUT_SCHEMA_INVALID"

	ErrCodeActionPending  ErrorCode = "ACTION_PENDING"
	ErrCodeActionNotFound ErrorCode = "ACTION_NOT_FOUND"
	ErrCodeUploadTooLarge ErrorCode = "UPLOAD_TOO_LARGE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

const (
	CategoryValidation = "validation"
	CategoryInvocation = "invocation"
	CategoryConflict   = "conflict"
	CategoryRouting    = "routing"
	CategoryInternal   = "internal"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// NewValidationError reports input that failed the input schema.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputParsingError reports a request body or job payload that is not a
// JSON object.
func NewInputParsingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "validation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvocationError wraps a failure raised by the inference capability.
func NewInvocationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvocationFailed,
		Message:   "invocation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvocationTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvocationTimeout,
		Message:   "invocation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewOutputInvalidError reports a capability result that is missing or does
// not conform to the declared output schema.
func NewOutputInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutputInvalid,
		Message:   "invocation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewActionPendingError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionPending,
		Message:   "a submission from this form is already pending",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewActionNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionNotFound,
		Message:   "unknown action",
		Details:   fmt.Sprintf("action: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUploadTooLargeError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadTooLarge,
		Message:   "uploaded document is too large",
		Details:   fmt.Sprintf("limit: %d bytes", limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetErrorCategory maps a code onto the coarse failure category reported to
// callers.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInputParsingFailed, ErrCodeValidationFailed, ErrCodeUploadTooLarge:
		return CategoryValidation
	case ErrCodeInvocationFailed, ErrCodeInvocationTimeout, ErrCodeOutputInvalid:
		return CategoryInvocation
	case ErrCodeActionPending:
		return CategoryConflict
	case ErrCodeActionNotFound:
		return CategoryRouting
	default:
		return CategoryInternal
	}
}

// IsRetryableErrorCode reports whether resubmitting the same input may succeed.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeInvocationFailed, ErrCodeInvocationTimeout, ErrCodeActionPending:
		return true
	default:
		return false
	}
}

// Normalize converts any error into a StandardError; unknown errors become
// INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ExtractErrorCode returns the code of a StandardError, or UNKNOWN_ERROR.
func ExtractErrorCode(err error) string {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}
