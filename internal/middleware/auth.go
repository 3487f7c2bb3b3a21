package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openhealthcare/openehr-api/pkg/auth"
	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

const ContextSubject = "subject"

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) reject(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		newErrorResponse(apperrors.ErrUnauthorized, message, "", c.GetString(ContextRequestID)))
}

// Authenticate verifies the bearer token and stores its subject in the
// context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.reject(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.reject(c, "invalid authorization format")
			return
		}

		claims, err := m.jwt.ValidateToken(parts[1])
		if err != nil {
			m.reject(c, "invalid token")
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Next()
	}
}

// AuthenticateWrites runs Authenticate for every method except reads.
func (m *AuthMiddleware) AuthenticateWrites() gin.HandlerFunc {
	authenticate := m.Authenticate()
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			authenticate(c)
		}
	}
}
