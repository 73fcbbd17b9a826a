package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sightreadpro-backend/internal/http/response"
	"github.com/yungbote/sightreadpro-backend/internal/observability"
	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
	"github.com/yungbote/sightreadpro-backend/internal/platform/ratelimit"
)

// Allower is satisfied by *ratelimit.Limiter.
type Allower interface {
	Allow(ctx context.Context, subject string) (ratelimit.Decision, error)
}

// RateLimit keys on the client IP. A nil limiter disables the check, and a
// counter failure lets the request through.
func RateLimit(limiter Allower, m *observability.Metrics, log *logger.Logger) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("middleware", "RateLimit")
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("Rate limiter unavailable, allowing request", "path", c.FullPath(), "error", err)
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		if !d.Allowed {
			retry := int(math.Ceil(d.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.Header("X-RateLimit-Remaining", "0")
			m.IncRateLimited(c.FullPath())
			response.RespondAPIError(c, log, fmt.Errorf("too many requests, retry in %s: %w",
				time.Duration(retry)*time.Second, apierr.ErrRateLimited))
			c.Abort()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Next()
	}
}

// compile-time check
var _ Allower = (*ratelimit.Limiter)(nil)
