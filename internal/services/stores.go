package services

import (
	"context"
	"time"

	"github.com/yungbote/sightreadpro-backend/internal/data/store"
	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
)

// ProgressStore is the slice of the persistence gateway ProgressService uses.
type ProgressStore interface {
	Now() time.Time
	GetUser(ctx context.Context, userID string) (*types.User, error)
	EnsureUser(ctx context.Context, userID string) (*types.User, error)
	UpdateUserProgress(ctx context.Context, userID string, xpEarned int, streakRequested bool) (*store.ProgressUpdate, error)
	GetUserProgress(ctx context.Context, userID string) (*types.UserProgress, error)
	GetExercise(ctx context.Context, id int64) (*types.Exercise, error)
	SavePerformance(ctx context.Context, p *types.Performance) (int64, error)
}

// CatalogStore is the slice of the persistence gateway CatalogService uses.
type CatalogStore interface {
	Now() time.Time
	EnsureUser(ctx context.Context, userID string) (*types.User, error)
	GetExercises(ctx context.Context, limit int, difficulty types.Difficulty) ([]*types.Exercise, error)
	GetExercise(ctx context.Context, id int64) (*types.Exercise, error)
}

var (
	_ ProgressStore = (*store.Store)(nil)
	_ CatalogStore  = (*store.Store)(nil)
)

// checkLimit enforces lo <= v <= hi, substituting def when v is zero.
func checkLimit(field string, v, def, lo, hi int) (int, error) {
	if v == 0 {
		return def, nil
	}
	if v < lo || v > hi {
		return 0, apierr.Invalid(field, "must be between %d and %d", lo, hi)
	}
	return v, nil
}
