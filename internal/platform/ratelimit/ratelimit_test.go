package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], nil
}

func newTestLimiter(t *testing.T, c Counter, limit int) *Limiter {
	t.Helper()
	log, _ := logger.New("test")
	l, err := NewLimiter(c, "upload", limit, time.Minute, log)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}
	return l
}

func TestLimiterFixedWindow(t *testing.T) {
	l := newTestLimiter(t, &memCounter{}, 2)
	base := time.Date(2026, 5, 1, 12, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return base }

	for i, want := range []bool{true, true, false} {
		d, err := l.Allow(context.Background(), "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow %d: %v", i, err)
		}
		if d.Allowed != want {
			t.Fatalf("Allow %d: allowed=%v want %v", i, d.Allowed, want)
		}
		if !want && d.RetryAfter != 50*time.Second {
			t.Fatalf("RetryAfter: %s", d.RetryAfter)
		}
	}

	// Other subjects are counted separately.
	if d, _ := l.Allow(context.Background(), "10.0.0.2"); !d.Allowed || d.Remaining != 1 {
		t.Fatalf("other subject: %+v", d)
	}

	l.now = func() time.Time { return base.Add(time.Minute) }
	if d, _ := l.Allow(context.Background(), "10.0.0.1"); !d.Allowed {
		t.Fatalf("next window should allow: %+v", d)
	}
}

func TestLimiterCounterError(t *testing.T) {
	boom := errors.New("redis down")
	l := newTestLimiter(t, &memCounter{err: boom}, 1)
	if _, err := l.Allow(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected counter error, got %v", err)
	}
}

func TestNewLimiterValidates(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := NewLimiter(nil, "p", 1, time.Second, log); err == nil {
		t.Fatalf("expected error for nil counter")
	}
	if _, err := NewLimiter(&memCounter{}, "p", 0, time.Second, log); err == nil {
		t.Fatalf("expected error for zero limit")
	}
}
