package middleware

import (
	"strconv"
	"time"

	"github.com/arbdesk/arbgate/internal/config"
	"github.com/arbdesk/arbgate/internal/pkg/apperrors"
	"github.com/arbdesk/arbgate/internal/pkg/logger"
	"github.com/arbdesk/arbgate/internal/pkg/metrics"
	"github.com/arbdesk/arbgate/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware enforces the fixed window for one endpoint class,
// keyed by the authenticated user. Must run after AuthMiddleware. Every
// response gets X-RateLimit-Remaining / X-RateLimit-Reset; rejections add
// Retry-After.
func RateLimitMiddleware(limiter ratelimit.Limiter, class string, window config.WindowConfig) gin.HandlerFunc {
	cfg := ratelimit.Config{
		MaxRequests: window.MaxRequests,
		Window:      time.Duration(window.WindowSeconds) * time.Second,
	}
	return func(c *gin.Context) {
		tenant := Tenant(c)
		key := ratelimit.Key(class, tenant.UserID)

		result, err := limiter.Check(c.Request.Context(), key, cfg)
		if err != nil {
			// A broken limiter backend must not take reads down with it.
			logger.Error("rate limiter check failed, allowing request", "error", err, "class", class)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			metrics.RateLimitRejects.WithLabelValues(class).Inc()
			c.Error(apperrors.New(apperrors.ErrRateLimited, "rate limit exceeded, retry after "+strconv.Itoa(retryAfter)+"s", nil))
			c.Abort()
			return
		}

		c.Next()
	}
}
