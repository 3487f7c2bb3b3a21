package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(code apperrors.ErrorCode, message, field, traceID string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Code:    code.String(),
		Message: message,
		Field:   field,
		TraceID: traceID,
	}
}

// ErrorHandler renders the last error a handler attached with c.Error.
// AppErrors keep their code and field; anything else becomes a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		traceID := c.GetString(ContextRequestID)
		lastErr := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if !errors.As(lastErr, &appErr) {
			appErr = apperrors.NewInternal(lastErr)
		}

		status := appErr.StatusCode()
		logger := RequestLogger(c)
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		if appErr.Field != "" {
			event = event.Str("field", appErr.Field)
		}
		event.Err(lastErr).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Str("code", appErr.Code.String()).
			Msg("Request error")

		c.JSON(status, newErrorResponse(appErr.Code, appErr.Message, appErr.Field, traceID))
	}
}
