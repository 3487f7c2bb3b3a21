package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger writes one access line per request through the request logger,
// so the line carries the request ID. Bodies are never logged since they
// carry clinical data. The matched route is logged next to the raw path.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		logger := RequestLogger(c)
		var event *zerolog.Event
		msg := "Request processed"
		switch {
		case statusCode >= 500:
			event = logger.Error()
			msg = "Server error"
		case statusCode >= 400:
			event = logger.Warn()
			msg = "Client error"
		default:
			event = logger.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Str("ip", c.ClientIP()).
			Int("status", statusCode).
			Dur("duration", latency).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
