package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

// Counter increments key and returns the new value. The key expires after
// ttl once created.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a fixed-window limiter: at most Limit hits per subject per Window.
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	prefix  string
	now     func() time.Time
	log     *logger.Logger
}

func NewLimiter(counter Counter, prefix string, limit int, window time.Duration, log *logger.Logger) (*Limiter, error) {
	if counter == nil {
		return nil, fmt.Errorf("ratelimit: counter required")
	}
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("ratelimit: limit and window must be positive (limit=%d window=%s)", limit, window)
	}
	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
		now:     time.Now,
		log:     log.With("service", "RateLimiter", "prefix", prefix),
	}, nil
}

func (l *Limiter) Limit() int { return l.limit }

func (l *Limiter) Allow(ctx context.Context, subject string) (Decision, error) {
	now := l.now()
	slot := now.UnixNano() / int64(l.window)
	key := l.prefix + ":" + subject + ":" + strconv.FormatInt(slot, 10)

	n, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		return Decision{}, err
	}

	windowEnd := time.Unix(0, (slot+1)*int64(l.window))
	d := Decision{Allowed: n <= int64(l.limit), Limit: l.limit}
	if d.Allowed {
		d.Remaining = l.limit - int(n)
	} else {
		d.RetryAfter = windowEnd.Sub(now)
		l.log.Debug("Rate limit exceeded", "subject", subject, "count", n)
	}
	return d, nil
}
