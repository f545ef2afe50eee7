// internal/common/errors/handler.go
package errors

// ErrorHandler turns operation failures into log entries and user-facing messages.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleOperationError logs err and returns the message to show the user. Retryable
// failures are logged at warn level, everything else at error level.
func (h *ErrorHandler) HandleOperationError(operation string, err error, fields map[string]interface{}) string {
	if err == nil {
		return ""
	}
	stdErr := Normalize(err)
	h.logError(operation, stdErr, fields)
	return stdErr.Message
}

func (h *ErrorHandler) logError(operation string, stdErr *StandardError, extra map[string]interface{}) {
	fields := map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}

	if stdErr.Retryable {
		h.logger.Warn("operation failed", fields)
		return
	}
	h.logger.Error("operation failed", fields)
}
