// Package errors provides the standardized error taxonomy shared by the portal.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Gateway
	ErrCodeTransportFailure  ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeBackendRejected   ErrorCode = "BACKEND_REJECTED"
	ErrCodeShapeMismatch     ErrorCode = "SHAPE_MISMATCH"
	ErrCodeContractViolation ErrorCode = "CONTRACT_VIOLATION"

	// Session store
	ErrCodeOperationInFlight ErrorCode = "OPERATION_IN_FLIGHT"

	// Session storage (redis)
	ErrCodeSessionStorageFailed ErrorCode = "SESSION_STORAGE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured portal error. Message is always safe to show
// to the user; Details carries the technical cause for logs.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another *StandardError by code, so sentinel comparisons work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns the error with an extra metadata entry.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTransportFailureError creates a retryable error for a request that never reached
// the backend or whose response could not be read.
func NewTransportFailureError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailure,
		Message:   "Unable to reach the job board service",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewBackendRejectedError wraps a well-formed envelope with success=false. The backend
// message is used verbatim when present, otherwise fallback.
func NewBackendRejectedError(backendMessage, fallback string) *StandardError {
	msg := strings.TrimSpace(backendMessage)
	if msg == "" {
		msg = fallback
	}
	return &StandardError{
		Code:      ErrCodeBackendRejected,
		Message:   msg,
		Details:   fmt.Sprintf("backend message: %q", backendMessage),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewShapeMismatchError reports an envelope that claimed success but lacked the data
// the caller needs.
func NewShapeMismatchError(operation, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeShapeMismatch,
		Message:   "Unexpected response from the job board service",
		Details:   fmt.Sprintf("operation: %s, %s", operation, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContractViolationError reports a payload that does not match the canonical shape.
func NewContractViolationError(resource string, problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeContractViolation,
		Message:   fmt.Sprintf("Invalid %s received from the job board service", resource),
		Details:   strings.Join(problems, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOperationInFlightError rejects a second mutation for a job while one is pending.
func NewOperationInFlightError(jobID int64) *StandardError {
	return (&StandardError{
		Code:      ErrCodeOperationInFlight,
		Message:   "Another request for this job is still in progress",
		Details:   fmt.Sprintf("jobId: %d", jobID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}).WithMetadata("jobId", jobID)
}

// NewSessionStorageError creates a retryable error for redis session failures.
func NewSessionStorageError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStorageFailed,
		Message:   "Your session could not be loaded, please try again",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// WithMessage returns a copy of err with a caller-chosen user message, keeping the code.
func WithMessage(err *StandardError, message string) *StandardError {
	cp := *err
	cp.Message = message
	return &cp
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
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
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf returns the code of err, or "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// UserMessage extracts the human-readable message the UI should display.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) && stdErr.Message != "" {
		return stdErr.Message
	}
	return fallback
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeTransportFailure, ErrCodeOperationInFlight, ErrCodeSessionStorageFailed:
		return true
	default:
		return false
	}
}

func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeTransportFailure:
		return "TRANSPORT"
	case ErrCodeBackendRejected:
		return "BACKEND"
	case ErrCodeShapeMismatch, ErrCodeContractViolation:
		return "CONTRACT"
	case ErrCodeOperationInFlight:
		return "CONCURRENCY"
	case ErrCodeSessionStorageFailed:
		return "SESSION"
	default:
		return "OTHER"
	}
}
