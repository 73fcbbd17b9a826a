package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/sightreadpro-backend/internal/data/repos/testutil"
	"github.com/yungbote/sightreadpro-backend/internal/data/store"
	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
	"github.com/yungbote/sightreadpro-backend/internal/platform/objectstore"
	"github.com/yungbote/sightreadpro-backend/internal/scores"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *testClock {
	return &testClock{t: time.Date(2026, 9, 14, 9, 30, 0, 0, time.UTC)}
}

// seededStore returns a store over the sample catalog (ids 1-3).
func seededStore(t *testing.T) (*store.Store, *testClock) {
	t.Helper()
	c := newClock()
	return store.New(testutil.SeededDB(t), testutil.Logger(t), store.WithClock(c.Now)), c
}

func expectCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d %s, got nil error", status, code)
	}
	gotStatus, gotCode := apierr.Classify(err)
	if gotStatus != status || gotCode != code {
		t.Fatalf("expected %d %s, got %d %s (%v)", status, code, gotStatus, gotCode, err)
	}
}

func expectInvalidField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *apierr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for %s, got %v", field, err)
	}
	if ve.Field != field {
		t.Fatalf("expected field %q, got %q (%v)", field, ve.Field, err)
	}
}

type fakeParser struct {
	facts  *scores.Facts
	err    error
	panics bool
	calls  int
}

func (p *fakeParser) Parse(_ context.Context, r io.Reader) (*scores.Facts, error) {
	p.calls++
	_, _ = io.Copy(io.Discard, r)
	if p.panics {
		panic("index out of range")
	}
	return p.facts, p.err
}

// failingStore wraps a Store and fails every Put.
type failingStore struct {
	objectstore.Store
	err error
}

func (f failingStore) Put(context.Context, string, io.Reader) (int64, error) {
	return 0, f.err
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
