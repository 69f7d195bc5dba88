package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/jobboard-api/internal/handler"
	apperrors "github.com/jwalitptl/jobboard-api/pkg/errors"
	"github.com/jwalitptl/jobboard-api/pkg/metrics"
	"github.com/jwalitptl/jobboard-api/pkg/ratelimit"
)

type RateLimiter struct {
	limiter ratelimit.Limiter
	metrics *metrics.Metrics
}

func NewRateLimiter(limiter ratelimit.Limiter, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		metrics: m,
	}
}

// RateLimit throttles each client IP. Backend failures let the request through.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := rl.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().
				Err(err).
				Str("request_id", c.GetString(ContextRequestID)).
				Msg("rate limiter unavailable, allowing request")
			if rl.metrics != nil {
				rl.metrics.LimiterFailure.Inc()
			}
		}

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RateLimited.WithLabelValues(c.FullPath()).Inc()
			}
			c.Header("Retry-After", "1")
			c.Abort()
			handler.RespondWithError(c, apperrors.NewTooManyRequests(nil), nil)
			return
		}

		c.Next()
	}
}
