package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

// CatalogScanLimit bounds the full-catalog scans behind lookup, search and
// summary.
const CatalogScanLimit = 1000

type CatalogService interface {
	// Daily selects today's set for userID. Selection is an unweighted random
	// sample; userID is part of the contract for future personalization.
	Daily(ctx context.Context, userID string, limit int, difficulty types.Difficulty) (*DailyExercises, error)
	List(ctx context.Context, limit, offset int, difficulty types.Difficulty) ([]*types.Exercise, error)
	ByID(ctx context.Context, id int64) (*types.Exercise, error)
	ByDifficulty(ctx context.Context, difficulty types.Difficulty, limit int) ([]*types.Exercise, error)
	Random(ctx context.Context, count int, difficulty types.Difficulty) ([]*types.Exercise, error)
	Search(ctx context.Context, query string, limit int) (*SearchResult, error)
	Summary(ctx context.Context) (*CatalogSummary, error)
}

type DailyExercises struct {
	UserID     string            `json:"user_id"`
	Date       string            `json:"date"`
	Exercises  []*types.Exercise `json:"exercises"`
	TotalCount int               `json:"total_count"`
}

type SearchResult struct {
	Query           string            `json:"query"`
	Results         []*types.Exercise `json:"results"`
	TotalFound      int               `json:"total_found"`
	SearchTimestamp time.Time         `json:"search_timestamp"`
}

type CatalogSummary struct {
	TotalExercises         int                      `json:"total_exercises"`
	DifficultyDistribution map[types.Difficulty]int `json:"difficulty_distribution"`
	AverageXPReward        float64                  `json:"average_xp_reward"`
	TotalXPAvailable       int                      `json:"total_xp_available"`
	LastUpdated            time.Time                `json:"last_updated"`
}

type catalogService struct {
	log   *logger.Logger
	store CatalogStore
}

func NewCatalogService(baseLog *logger.Logger, store CatalogStore) CatalogService {
	return &catalogService{
		log:   baseLog.With("service", "CatalogService"),
		store: store,
	}
}

func checkDifficulty(d types.Difficulty) error {
	if d != "" && !d.Valid() {
		return apierr.Invalid("difficulty", "must be one of easy, medium, hard")
	}
	return nil
}

func (s *catalogService) Daily(ctx context.Context, userID string, limit int, difficulty types.Difficulty) (*DailyExercises, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	limit, err := checkLimit("limit", limit, 5, 1, 20)
	if err != nil {
		return nil, err
	}
	if err := checkDifficulty(difficulty); err != nil {
		return nil, err
	}
	if _, err := s.store.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}
	exercises, err := s.store.GetExercises(ctx, limit, difficulty)
	if err != nil {
		return nil, err
	}
	return &DailyExercises{
		UserID:     userID,
		Date:       types.DateOf(s.store.Now()),
		Exercises:  exercises,
		TotalCount: len(exercises),
	}, nil
}

// List samples limit+offset random rows and drops the first offset.
func (s *catalogService) List(ctx context.Context, limit, offset int, difficulty types.Difficulty) ([]*types.Exercise, error) {
	limit, err := checkLimit("limit", limit, 20, 1, 100)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, apierr.Invalid("offset", "must not be negative")
	}
	if err := checkDifficulty(difficulty); err != nil {
		return nil, err
	}
	exercises, err := s.store.GetExercises(ctx, limit+offset, difficulty)
	if err != nil {
		return nil, err
	}
	if offset >= len(exercises) {
		return []*types.Exercise{}, nil
	}
	exercises = exercises[offset:]
	if len(exercises) > limit {
		exercises = exercises[:limit]
	}
	return exercises, nil
}

// ByID scans at most CatalogScanLimit exercises.
func (s *catalogService) ByID(ctx context.Context, id int64) (*types.Exercise, error) {
	all, err := s.store.GetExercises(ctx, CatalogScanLimit, "")
	if err != nil {
		return nil, err
	}
	for _, ex := range all {
		if ex.ID == id {
			return ex, nil
		}
	}
	return nil, apierr.New(404, "exercise_not_found",
		fmt.Errorf("exercise with ID %d not found: %w", id, apierr.ErrNotFound))
}

func (s *catalogService) ByDifficulty(ctx context.Context, difficulty types.Difficulty, limit int) ([]*types.Exercise, error) {
	if !difficulty.Valid() {
		return nil, apierr.Invalid("difficulty", "must be one of easy, medium, hard")
	}
	limit, err := checkLimit("limit", limit, 10, 1, 50)
	if err != nil {
		return nil, err
	}
	return s.store.GetExercises(ctx, limit, difficulty)
}

func (s *catalogService) Random(ctx context.Context, count int, difficulty types.Difficulty) ([]*types.Exercise, error) {
	if count < 1 || count > 100 {
		return nil, apierr.Invalid("count", "must be between 1 and 100")
	}
	if err := checkDifficulty(difficulty); err != nil {
		return nil, err
	}
	return s.store.GetExercises(ctx, count, difficulty)
}

// Search matches query case-insensitively against title, key signature,
// time signature and difficulty. An exercise appears at most once; results
// are in id order and truncated to limit.
func (s *catalogService) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apierr.Invalid("query", "is required")
	}
	q := strings.ToLower(query)
	limit, err := checkLimit("limit", limit, 10, 1, 50)
	if err != nil {
		return nil, err
	}
	all, err := s.store.GetExercises(ctx, CatalogScanLimit, "")
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	results := make([]*types.Exercise, 0, limit)
	for _, ex := range all {
		if len(results) == limit {
			break
		}
		if matchesQuery(ex, q) {
			results = append(results, ex)
		}
	}
	return &SearchResult{
		Query:           query,
		Results:         results,
		TotalFound:      len(results),
		SearchTimestamp: s.store.Now(),
	}, nil
}

func matchesQuery(ex *types.Exercise, q string) bool {
	for _, field := range []string{ex.Title, ex.KeySignature, ex.TimeSignature, string(ex.Difficulty)} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (s *catalogService) Summary(ctx context.Context) (*CatalogSummary, error) {
	all, err := s.store.GetExercises(ctx, CatalogScanLimit, "")
	if err != nil {
		return nil, err
	}
	dist := map[types.Difficulty]int{}
	total := 0
	for _, ex := range all {
		dist[ex.Difficulty]++
		total += ex.XPReward
	}
	avg := 0.0
	if len(all) > 0 {
		avg = round2(float64(total) / float64(len(all)))
	}
	return &CatalogSummary{
		TotalExercises:         len(all),
		DifficultyDistribution: dist,
		AverageXPReward:        avg,
		TotalXPAvailable:       total,
		LastUpdated:            s.store.Now(),
	}, nil
}
