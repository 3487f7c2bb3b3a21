package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/openhealthcare/openehr-api/pkg/auth"
	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/choice", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("invalid address: %w", apperrors.NewChoiceConstraint("address_type", "ADDRESS_TYPE", "VACATION")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		_ = c.Error(errors.New("late"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/choice", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"choice_constraint_violation"`)
	assert.Contains(t, w.Body.String(), `"field":"address_type"`)
	assert.Contains(t, w.Body.String(), `"trace_id":"`+w.Header().Get(HeaderXRequestID)+`"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"internal"`)
	assert.NotContains(t, w.Body.String(), "boom")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("broken") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"internal"`)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig("https://ehr.example.org")))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://ehr.example.org")
	w := serve(r, req)
	assert.Equal(t, "https://ehr.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://ehr.example.org")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardEchoesOriginWithCredentials(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://any.example.net")
	w := serve(r, req)
	assert.Equal(t, "https://any.example.net", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))
	// buckets are per client
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: 20 * time.Millisecond}))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusGatewayTimeout, serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestTimeout_ExemptPrefixes(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: 10 * time.Millisecond, ExemptPrefixes: []string{"/api/v1/health"}}))
	r.GET("/api/v1/health/ready", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		assert.False(t, hasDeadline)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)).Code)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 16, MaxHeaderSize: 64}))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":"b"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("x", 17))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Padding", strings.Repeat("p", 80))
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, req).Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
}

func TestSecurityHeaders_EmptyValuesOmitted(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(SecurityConfig{FrameOptions: "SAMEORIGIN"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Pragma"))
	_, present := w.Header()["Content-Security-Policy"]
	assert.False(t, present)
}

func TestAuthenticateWrites(t *testing.T) {
	jwtService := auth.NewJWTService("secret", "openehr")
	m := NewAuthMiddleware(jwtService)

	r := gin.New()
	r.Use(m.AuthenticateWrites())
	handler := func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextSubject)) }
	r.GET("/x", handler)
	r.POST("/x", handler)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodPost, "/x", nil)).Code)

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	token, err := jwtService.GenerateAccessToken("clinician-7", nil, time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "clinician-7", w.Body.String())
}

func TestRequestIDKeepsIncomingHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderXRequestID, "req-123")
	w := serve(r, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(HeaderXRequestID))
}

func TestRequestIDRegeneratesUnsafeHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	for _, incoming := range []string{"has space", strings.Repeat("a", 129)} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(HeaderXRequestID, incoming)
		w := serve(r, req)

		assert.NotEqual(t, incoming, w.Body.String())
		_, err := uuid.Parse(w.Header().Get(HeaderXRequestID))
		assert.NoError(t, err)
	}
}

// captureLogs swaps the global logger for one writing to a buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	previous := log.Logger
	log.Logger = zerolog.New(buf)
	t.Cleanup(func() { log.Logger = previous })
	return buf
}

func TestRequestLoggerCarriesRequestID(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), Logger(), ErrorHandler())
	r.GET("/api/v1/body-sites/:id", func(c *gin.Context) {
		RequestLogger(c).Info().Msg("loading record")
		_ = c.Error(apperrors.NewFieldConstraint("severity_rating", "severity_rating must be at most 10", nil))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/body-sites/42", nil)
	req.Header.Set(HeaderXRequestID, "req-abc")
	w := serve(r, req)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, buf.String())
	for _, line := range lines {
		assert.Contains(t, line, `"request_id":"req-abc"`)
	}
	assert.Contains(t, lines[0], "loading record")
	assert.Contains(t, lines[1], `"field":"severity_rating"`)
	assert.Contains(t, lines[2], `"route":"/api/v1/body-sites/:id"`)
	assert.Contains(t, lines[2], `"status":422`)
}

func TestRecoveryLogsThroughRequestLogger(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("broken") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(HeaderXRequestID, "req-panic")
	w := serve(r, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"trace_id":"req-panic"`)
	assert.Contains(t, buf.String(), `"request_id":"req-panic"`)
	assert.Contains(t, buf.String(), `"panic":"broken"`)
}
