package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/yungbote/sightreadpro-backend/internal/data/db"
	"github.com/yungbote/sightreadpro-backend/internal/data/repos"
	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
	"github.com/yungbote/sightreadpro-backend/internal/platform/dbctx"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

type Config struct {
	DB dbpkg.Config
	// Seed inserts the sample catalog when the exercises table is empty.
	Seed bool
	// SeedFile overrides the embedded seed catalog.
	SeedFile string
}

type Option func(*Store)

// WithClock replaces time.Now, which decides "today" for progression.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store owns the schema and every read/write against users, exercises and
// performances. Each method is a single statement or transaction committed
// before it returns.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time

	users        repos.UserRepo
	exercises    repos.ExerciseRepo
	performances repos.PerformanceRepo
}

// Open connects, migrates and (optionally) seeds.
func Open(ctx context.Context, cfg Config, log *logger.Logger, opts ...Option) (*Store, error) {
	conn, err := dbpkg.Open(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	s := New(conn, log, opts...)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	if cfg.Seed {
		if _, err := s.Seed(ctx, cfg.SeedFile); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// New wraps an existing connection. The caller is responsible for migrating.
func New(db *gorm.DB, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		db:           db,
		log:          log.With("service", "Store"),
		now:          time.Now,
		users:        repos.NewUserRepo(db, log),
		exercises:    repos.NewExerciseRepo(db, log),
		performances: repos.NewPerformanceRepo(db, log),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *gorm.DB { return s.db }

// Now is the store's clock.
func (s *Store) Now() time.Time { return s.now() }

func (s *Store) Migrate(ctx context.Context) error {
	if err := dbpkg.AutoMigrateAll(s.db.WithContext(ctx)); err != nil {
		return apierr.Storage("migrate", err)
	}
	return nil
}

// Seed loads the seed catalog (embedded when path is empty) into an empty
// exercises table and returns how many rows were inserted.
func (s *Store) Seed(ctx context.Context, path string) (int, error) {
	exercises, err := dbpkg.LoadSeed(strings.TrimSpace(path), s.now())
	if err != nil {
		return 0, err
	}
	n, err := dbpkg.SeedExercises(s.db.WithContext(ctx), exercises)
	if err != nil {
		return 0, apierr.Storage("seed", err)
	}
	if n > 0 {
		s.log.Info("Seeded exercise catalog", "count", n)
	}
	return n, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apierr.Storage("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apierr.Storage("ping", err)
	}
	return nil
}

// CreateUser writes a zeroed user, overwriting any existing row with the same id.
func (s *Store) CreateUser(ctx context.Context, userID string) (*types.User, error) {
	u, err := s.users.Upsert(dbctx.From(ctx), types.NewUser(userID, s.now()))
	if err != nil {
		return nil, apierr.Storage("create user", err)
	}
	return u, nil
}

// GetUser returns (nil, nil) for an unknown id.
func (s *Store) GetUser(ctx context.Context, userID string) (*types.User, error) {
	u, err := s.users.GetByID(dbctx.From(ctx), userID)
	if err != nil {
		return nil, apierr.Storage("get user", err)
	}
	return u, nil
}

// EnsureUser returns the user, creating it first when absent.
func (s *Store) EnsureUser(ctx context.Context, userID string) (*types.User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil || u != nil {
		return u, err
	}
	s.log.Debug("Creating user on first reference", "user_id", userID)
	return s.CreateUser(ctx, userID)
}

// ProgressUpdate is the outcome of UpdateUserProgress.
type ProgressUpdate struct {
	User              *types.User
	StreakIncremented bool
}

// UpdateUserProgress adds xpEarned to the user's XP, applies the streak rule
// and recomputes the level in one transaction. A missing user is created first.
func (s *Store) UpdateUserProgress(ctx context.Context, userID string, xpEarned int, streakRequested bool) (*ProgressUpdate, error) {
	var out *ProgressUpdate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		now := s.now()

		u, err := s.users.GetByIDForUpdate(dbc, userID)
		if err != nil {
			return err
		}
		created := false
		if u == nil {
			u = types.NewUser(userID, now)
			created = true
		}

		next, incremented := types.Advance(types.StateOf(u), xpEarned, streakRequested, types.DateOf(now))
		next.Apply(u)

		if created {
			if _, err := s.users.Upsert(dbc, u); err != nil {
				return err
			}
		} else if err := s.users.UpdateProgress(dbc, u); err != nil {
			return err
		}
		out = &ProgressUpdate{User: u, StreakIncremented: incremented}
		return nil
	})
	if err != nil {
		return nil, apierr.Storage("update user progress", err)
	}
	return out, nil
}

// GetExercises returns up to limit exercises in random order.
func (s *Store) GetExercises(ctx context.Context, limit int, difficulty types.Difficulty) ([]*types.Exercise, error) {
	out, err := s.exercises.Sample(dbctx.From(ctx), limit, difficulty)
	if err != nil {
		return nil, apierr.Storage("get exercises", err)
	}
	return out, nil
}

// GetExercise returns (nil, nil) for an unknown id.
func (s *Store) GetExercise(ctx context.Context, id int64) (*types.Exercise, error) {
	ex, err := s.exercises.GetByID(dbctx.From(ctx), id)
	if err != nil {
		return nil, apierr.Storage("get exercise", err)
	}
	return ex, nil
}

func (s *Store) CreateExercises(ctx context.Context, exercises []*types.Exercise) ([]*types.Exercise, error) {
	for _, ex := range exercises {
		if ex.CreatedAt.IsZero() {
			ex.CreatedAt = s.now()
		}
	}
	out, err := s.exercises.Create(dbctx.From(ctx), exercises)
	if err != nil {
		return nil, apierr.Storage("create exercises", err)
	}
	return out, nil
}

func (s *Store) CountExercises(ctx context.Context) (int64, error) {
	n, err := s.exercises.Count(dbctx.From(ctx))
	if err != nil {
		return 0, apierr.Storage("count exercises", err)
	}
	return n, nil
}

// SavePerformance appends p and returns its id.
func (s *Store) SavePerformance(ctx context.Context, p *types.Performance) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("save performance: %w", apierr.ErrInvalidArgument)
	}
	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = s.now()
	}
	id, err := s.performances.Create(dbctx.From(ctx), p)
	if err != nil {
		return 0, apierr.Storage("save performance", err)
	}
	return id, nil
}

// GetUserProgress joins the user row with performance aggregates. It returns
// (nil, nil) when the user has no record.
func (s *Store) GetUserProgress(ctx context.Context, userID string) (*types.UserProgress, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil || u == nil {
		return nil, err
	}
	stats, err := s.performances.StatsForUser(dbctx.From(ctx), userID)
	if err != nil {
		return nil, apierr.Storage("get user progress", err)
	}
	return &types.UserProgress{
		UserID:                  u.UserID,
		CurrentXP:               u.XP,
		CurrentLevel:            u.Level,
		CurrentStreak:           u.Streak,
		LastActiveDate:          u.LastActiveDate,
		TotalExercisesCompleted: int(stats.Count),
		AverageScore:            stats.AverageScore,
	}, nil
}
