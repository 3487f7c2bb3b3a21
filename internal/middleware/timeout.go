package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

// TimeoutConfig bounds how long a record request may run.
type TimeoutConfig struct {
	Duration time.Duration
	// ExemptPrefixes keeps health checks and scrapes out of the deadline.
	ExemptPrefixes []string
}

func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Duration:       30 * time.Second,
		ExemptPrefixes: []string{"/api/v1/health", "/metrics"},
	}
}

// Timeout bounds the request context, which the stores pass down to their
// queries. Handlers run on the request goroutine; when the deadline passes
// before anything was written the client gets a 504.
func Timeout(config TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, prefix := range config.ExemptPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), config.Duration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			RequestLogger(c).Warn().
				Str("route", c.FullPath()).
				Dur("limit", config.Duration).
				Msg("Request deadline exceeded")
			c.AbortWithStatusJSON(http.StatusGatewayTimeout,
				newErrorResponse(apperrors.ErrInternal, "request timed out after "+config.Duration.String(), "", c.GetString(ContextRequestID)))
		}
	}
}
