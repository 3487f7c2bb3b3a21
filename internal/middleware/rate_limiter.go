package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// IdleTimeout drops a client's limiter after this long without requests.
	IdleTimeout time.Duration
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	config   RateLimiterConfig
	limiters *cache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 10 * time.Minute
	}
	return &RateLimiter{
		config:   config,
		limiters: cache.New(config.IdleTimeout, config.IdleTimeout),
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	if l, found := rl.limiters.Get(key); found {
		limiter := l.(*rate.Limiter)
		rl.limiters.Set(key, limiter, cache.DefaultExpiration)
		return limiter
	}
	limiter := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	if err := rl.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// another request created it first
		if l, found := rl.limiters.Get(key); found {
			return l.(*rate.Limiter)
		}
	}
	return limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				newErrorResponse(apperrors.ErrBadRequest, "rate limit exceeded", "", c.GetString(ContextRequestID)))
			return
		}
		c.Next()
	}
}
