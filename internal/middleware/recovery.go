package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

// Recovery turns a handler panic into a 500. The panic value and stack go
// to the request log only; the client sees the generic internal error with
// its trace ID.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				RequestLogger(c).Error().
					Interface("panic", err).
					Bytes("stack", debug.Stack()).
					Str("method", c.Request.Method).
					Str("route", c.FullPath()).
					Msg("Record handler panicked")

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(apperrors.ErrInternal, "internal server error", "", c.GetString(ContextRequestID)))
			}
		}()
		c.Next()
	}
}
