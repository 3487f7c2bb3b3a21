package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// SecurityConfig lists the response headers added to every API response.
// Empty values leave the header out.
type SecurityConfig struct {
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	FrameOptions          string
	ContentTypeOptions    string
	ReferrerPolicy        string
	ContentSecurityPolicy string
	CacheControl          string
}

// DefaultSecurityConfig suits a JSON-only API serving patient records:
// nothing is framed, embedded, or kept by shared caches.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		CacheControl:          "no-store",
	}
}

// SecurityHeaders sets the configured headers. A zero HSTSMaxAge disables
// Strict-Transport-Security.
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	headers := map[string]string{
		"X-Frame-Options":         config.FrameOptions,
		"X-Content-Type-Options":  config.ContentTypeOptions,
		"Referrer-Policy":         config.ReferrerPolicy,
		"Content-Security-Policy": config.ContentSecurityPolicy,
		"Cache-Control":           config.CacheControl,
	}
	if config.HSTSMaxAge > 0 {
		hsts := fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		headers["Strict-Transport-Security"] = hsts
	}
	for name, value := range headers {
		if value == "" {
			delete(headers, name)
		}
	}
	if config.CacheControl == "no-store" {
		headers["Pragma"] = "no-cache"
	}

	return func(c *gin.Context) {
		for name, value := range headers {
			c.Header(name, value)
		}
		c.Next()
	}
}
