package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	level  string
	msg    string
	fields map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.level, l.msg, l.fields = "error", msg, fields
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.level, l.msg, l.fields = "warn", msg, fields
}

func TestNewBackendRejectedError_Message(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		fallback string
		want     string
	}{
		{"backend message wins", "Already applied", "failed to apply", "Already applied"},
		{"empty falls back", "", "failed to apply", "failed to apply"},
		{"whitespace falls back", "   ", "failed to apply", "failed to apply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBackendRejectedError(tt.backend, tt.fallback)
			assert.Equal(t, ErrCodeBackendRejected, err.Code)
			assert.Equal(t, tt.want, err.Message)
			assert.False(t, err.Retryable)
		})
	}
}

func TestNewOperationInFlightError_CarriesJobID(t *testing.T) {
	err := NewOperationInFlightError(42)
	assert.Equal(t, int64(42), err.Metadata["jobId"])
	assert.True(t, err.Retryable)

	err = err.WithMetadata("action", "cancel")
	assert.Equal(t, "cancel", err.Metadata["action"])
	assert.Equal(t, int64(42), err.Metadata["jobId"], "existing entries are kept")
}

func TestStandardError_UnwrapAndIs(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewTransportFailureError("GET /jobs", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeTransportFailure}))
	assert.False(t, stderrors.Is(err, &StandardError{Code: ErrCodeBackendRejected}))

	wrapped := fmt.Errorf("load: %w", err)
	assert.True(t, IsCode(wrapped, ErrCodeTransportFailure))
	assert.Equal(t, ErrCodeTransportFailure, CodeOf(wrapped))
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	plain := stderrors.New("boom")
	n := Normalize(plain)
	require.NotNil(t, n)
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.Equal(t, "boom", n.Details)
	assert.True(t, stderrors.Is(n, plain))

	std := NewShapeMismatchError("apply", "missing data")
	assert.Same(t, std, Normalize(std))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "fallback"))
	assert.Equal(t, "fallback", UserMessage(stderrors.New("raw"), "fallback"))
	assert.Equal(t, "Already applied", UserMessage(NewBackendRejectedError("Already applied", "x"), "fallback"))
}

func TestWithMessage_KeepsCode(t *testing.T) {
	orig := NewTransportFailureError("POST /jobs/1/apply", stderrors.New("eof"))
	renamed := WithMessage(orig, "failed to apply")

	assert.Equal(t, "failed to apply", renamed.Message)
	assert.Equal(t, ErrCodeTransportFailure, renamed.Code)
	assert.NotEqual(t, orig.Message, renamed.Message)
}

func TestRetryableAndCategory(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
		category  string
	}{
		{ErrCodeTransportFailure, true, "TRANSPORT"},
		{ErrCodeBackendRejected, false, "BACKEND"},
		{ErrCodeShapeMismatch, false, "CONTRACT"},
		{ErrCodeContractViolation, false, "CONTRACT"},
		{ErrCodeOperationInFlight, true, "CONCURRENCY"},
		{ErrCodeSessionStorageFailed, true, "SESSION"},
		{ErrCodeInternal, false, "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryableErrorCode(tt.code))
			assert.Equal(t, tt.category, GetErrorCategory(tt.code))
		})
	}
}

func TestErrorHandler_HandleOperationError(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	msg := h.HandleOperationError("apply", NewBackendRejectedError("Already applied", "failed to apply"),
		map[string]interface{}{"jobId": int64(1)})
	assert.Equal(t, "Already applied", msg)
	assert.Equal(t, "error", log.level)
	assert.Equal(t, "apply", log.fields["operation"])
	assert.Equal(t, int64(1), log.fields["jobId"])

	msg = h.HandleOperationError("cancel", NewOperationInFlightError(7), nil)
	assert.Equal(t, "Another request for this job is still in progress", msg)
	assert.Equal(t, "warn", log.level)
	assert.Equal(t, int64(7), log.fields["jobId"])

	assert.Equal(t, "", h.HandleOperationError("noop", nil, nil))
}
