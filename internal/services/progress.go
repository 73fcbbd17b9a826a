package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/observability"
	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

const maxUserIDLen = 128

type ProgressService interface {
	SubmitPerformance(ctx context.Context, in SubmitPerformanceInput) (*PerformanceResult, error)
	// Progress and Profile create the user on first reference.
	Progress(ctx context.Context, userID string) (*types.UserProgress, error)
	Profile(ctx context.Context, userID string) (*types.User, error)
	Stats(ctx context.Context, userID string) (*UserStats, error)
	Performances(ctx context.Context, userID string, limit, offset int) (*PerformanceHistory, error)
	Reset(ctx context.Context, userID string) (*ResetResult, error)
	Leaderboard(ctx context.Context, limit int) (*Leaderboard, error)
}

type SubmitPerformanceInput struct {
	UserID              string
	ExerciseID          int64
	Score               *int
	Accuracy            *float64
	RhythmScore         *float64
	TempoScore          *float64
	PracticeTimeSeconds *int
	MistakesCount       *int
	NotesPlayed         []string
	PerformanceData     map[string]any
}

type PerformanceResult struct {
	Message           string `json:"message"`
	PerformanceID     int64  `json:"performance_id"`
	UserID            string `json:"user_id"`
	ExerciseID        int64  `json:"exercise_id"`
	Score             int    `json:"score"`
	XPEarned          int    `json:"xp_earned"`
	NewTotalXP        int    `json:"new_total_xp"`
	NewLevel          int    `json:"new_level"`
	StreakUpdated     bool   `json:"streak_updated"`
	StreakIncremented bool   `json:"streak_incremented"`
	NewStreak         int    `json:"new_streak"`
}

type UserStats struct {
	UserID        string        `json:"user_id"`
	CurrentStats  CurrentStats  `json:"current_stats"`
	PracticeInfo  PracticeInfo  `json:"practice_info"`
	LevelProgress LevelProgress `json:"level_progress"`
	Achievements  Achievements  `json:"achievements"`
	LastUpdated   time.Time     `json:"last_updated"`
}

type CurrentStats struct {
	XP                      int     `json:"xp"`
	Level                   int     `json:"level"`
	Streak                  int     `json:"streak"`
	TotalExercisesCompleted int     `json:"total_exercises_completed"`
	AverageScore            float64 `json:"average_score"`
}

type PracticeInfo struct {
	LastActiveDate    string `json:"last_active_date"`
	PracticedToday    bool   `json:"practiced_today"`
	DaysSincePractice int    `json:"days_since_practice"`
	CurrentStreak     int    `json:"current_streak"`
}

type LevelProgress struct {
	CurrentLevel            int     `json:"current_level"`
	XPInCurrentLevel        int     `json:"xp_in_current_level"`
	XPToNextLevel           int     `json:"xp_to_next_level"`
	LevelProgressPercentage float64 `json:"level_progress_percentage"`
}

type Achievements struct {
	FirstExercise bool `json:"first_exercise"`
	Streak3Days   bool `json:"streak_3_days"`
	Streak7Days   bool `json:"streak_7_days"`
	Streak30Days  bool `json:"streak_30_days"`
	Level5        bool `json:"level_5"`
	Level10       bool `json:"level_10"`
	Level20       bool `json:"level_20"`
}

type PerformanceHistory struct {
	UserID       string               `json:"user_id"`
	Performances []*types.Performance `json:"performances"`
	TotalCount   int                  `json:"total_count"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
	Message      string               `json:"message"`
}

type ResetResult struct {
	Message string `json:"message"`
	Warning string `json:"warning"`
}

type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Streak int    `json:"streak"`
}

type Leaderboard struct {
	Leaderboard       []LeaderboardEntry `json:"leaderboard"`
	TotalParticipants int                `json:"total_participants"`
	Limit             int                `json:"limit"`
	Message           string             `json:"message"`
	LastUpdated       time.Time          `json:"last_updated"`
}

type progressService struct {
	log     *logger.Logger
	store   ProgressStore
	metrics *observability.Metrics
}

func NewProgressService(baseLog *logger.Logger, store ProgressStore, metrics *observability.Metrics) ProgressService {
	return &progressService{
		log:     baseLog.With("service", "ProgressService"),
		store:   store,
		metrics: metrics,
	}
}

func (s *progressService) SubmitPerformance(ctx context.Context, in SubmitPerformanceInput) (*PerformanceResult, error) {
	if err := validateSubmission(&in); err != nil {
		s.metrics.ObservePerformance("invalid", 0, false)
		return nil, err
	}

	ex, err := s.store.GetExercise(ctx, in.ExerciseID)
	if err != nil {
		s.metrics.ObservePerformance("error", 0, false)
		return nil, err
	}
	if ex == nil {
		s.metrics.ObservePerformance("not_found", 0, false)
		return nil, apierr.New(404, "exercise_not_found",
			fmt.Errorf("exercise with ID %d not found: %w", in.ExerciseID, apierr.ErrNotFound))
	}

	score := *in.Score
	perf := &types.Performance{
		UserID:              in.UserID,
		ExerciseID:          in.ExerciseID,
		Score:               score,
		Accuracy:            in.Accuracy,
		RhythmScore:         in.RhythmScore,
		TempoScore:          in.TempoScore,
		PracticeTimeSeconds: in.PracticeTimeSeconds,
		MistakesCount:       in.MistakesCount,
		NotesPlayed:         in.NotesPlayed,
		PerformanceData:     in.PerformanceData,
		SubmittedAt:         s.store.Now(),
	}
	id, err := s.store.SavePerformance(ctx, perf)
	if err != nil {
		s.metrics.ObservePerformance("error", 0, false)
		return nil, err
	}

	xp := types.XPForScore(score)
	upd, err := s.store.UpdateUserProgress(ctx, in.UserID, xp, true)
	if err != nil {
		s.log.Error("Performance saved but progress update failed", "user_id", in.UserID, "performance_id", id, "error", err)
		s.metrics.ObservePerformance("error", 0, false)
		return nil, err
	}
	s.metrics.ObservePerformance("accepted", xp, upd.StreakIncremented)
	s.log.Info("Performance submitted",
		"user_id", in.UserID,
		"exercise_id", in.ExerciseID,
		"score", score,
		"xp_earned", xp,
		"level", upd.User.Level,
		"streak", upd.User.Streak,
	)

	return &PerformanceResult{
		Message:           "Performance submitted successfully!",
		PerformanceID:     id,
		UserID:            in.UserID,
		ExerciseID:        in.ExerciseID,
		Score:             score,
		XPEarned:          xp,
		NewTotalXP:        upd.User.XP,
		NewLevel:          upd.User.Level,
		StreakUpdated:     true,
		StreakIncremented: upd.StreakIncremented,
		NewStreak:         upd.User.Streak,
	}, nil
}

func validateSubmission(in *SubmitPerformanceInput) error {
	in.UserID = strings.TrimSpace(in.UserID)
	if err := validateUserID(in.UserID); err != nil {
		return err
	}
	if in.ExerciseID <= 0 {
		return apierr.Invalid("exercise_id", "is required")
	}
	if in.Score == nil {
		return apierr.Invalid("score", "is required")
	}
	if *in.Score < 0 || *in.Score > types.MaxScore {
		return apierr.Invalid("score", "must be an integer between 0 and 100")
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"accuracy", in.Accuracy},
		{"rhythm_score", in.RhythmScore},
		{"tempo_score", in.TempoScore},
	} {
		if f.v != nil && (math.IsNaN(*f.v) || *f.v < 0 || *f.v > 100) {
			return apierr.Invalid(f.name, "must be between 0 and 100")
		}
	}
	if in.PracticeTimeSeconds != nil && *in.PracticeTimeSeconds < 0 {
		return apierr.Invalid("practice_time_seconds", "must not be negative")
	}
	if in.MistakesCount != nil && *in.MistakesCount < 0 {
		return apierr.Invalid("mistakes_count", "must not be negative")
	}
	return validatePerformanceData(in.PerformanceData)
}

// validatePerformanceData accepts a flat object of scalar values within the
// key and size limits.
func validatePerformanceData(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	if len(data) > types.MaxPerformanceDataKeys {
		return apierr.Invalid("performance_data", "must have at most %d keys", types.MaxPerformanceDataKeys)
	}
	for k, v := range data {
		if k == "" || len(k) > types.MaxPerformanceDataKeyLen {
			return apierr.Invalid("performance_data", "keys must be 1-%d characters", types.MaxPerformanceDataKeyLen)
		}
		switch v.(type) {
		case map[string]any, []any:
			return apierr.Invalid("performance_data", "value for %q must be a string, number, boolean or null", k)
		}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return apierr.Invalid("performance_data", "is not serializable: %v", err)
	}
	if len(raw) > types.MaxPerformanceDataBytes {
		return apierr.Invalid("performance_data", "must serialize to at most %d bytes", types.MaxPerformanceDataBytes)
	}
	return nil
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apierr.Invalid("user_id", "is required")
	}
	if len(userID) > maxUserIDLen {
		return apierr.Invalid("user_id", "must be at most %d characters", maxUserIDLen)
	}
	return nil
}

func (s *progressService) Progress(ctx context.Context, userID string) (*types.UserProgress, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if _, err := s.store.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}
	p, err := s.store.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("progress for %q missing after create: %w", userID, apierr.ErrStorage)
	}
	return p, nil
}

func (s *progressService) Profile(ctx context.Context, userID string) (*types.User, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	return s.store.EnsureUser(ctx, userID)
}

func (s *progressService) Stats(ctx context.Context, userID string) (*UserStats, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	p, err := s.store.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, userNotFound(userID)
	}
	now := s.store.Now()
	return buildUserStats(p, now), nil
}

func buildUserStats(p *types.UserProgress, now time.Time) *UserStats {
	today := types.DateOf(now)
	practicedToday := p.LastActiveDate == today
	daysSince := 0
	if !practicedToday {
		if last, err := time.ParseInLocation(types.DateLayout, p.LastActiveDate, now.Location()); err == nil && now.After(last) {
			daysSince = int(now.Sub(last).Hours() / 24)
		}
	}

	inLevel := p.CurrentXP % types.XPPerLevel
	return &UserStats{
		UserID: p.UserID,
		CurrentStats: CurrentStats{
			XP:                      p.CurrentXP,
			Level:                   p.CurrentLevel,
			Streak:                  p.CurrentStreak,
			TotalExercisesCompleted: p.TotalExercisesCompleted,
			AverageScore:            round2(p.AverageScore),
		},
		PracticeInfo: PracticeInfo{
			LastActiveDate:    p.LastActiveDate,
			PracticedToday:    practicedToday,
			DaysSincePractice: daysSince,
			CurrentStreak:     p.CurrentStreak,
		},
		LevelProgress: LevelProgress{
			CurrentLevel:            p.CurrentLevel,
			XPInCurrentLevel:        inLevel,
			XPToNextLevel:           types.XPPerLevel - inLevel,
			LevelProgressPercentage: round2(float64(inLevel) / types.XPPerLevel * 100),
		},
		Achievements: Achievements{
			FirstExercise: p.TotalExercisesCompleted > 0,
			Streak3Days:   p.CurrentStreak >= 3,
			Streak7Days:   p.CurrentStreak >= 7,
			Streak30Days:  p.CurrentStreak >= 30,
			Level5:        p.CurrentLevel >= 5,
			Level10:       p.CurrentLevel >= 10,
			Level20:       p.CurrentLevel >= 20,
		},
		LastUpdated: now,
	}
}

// Performances is a placeholder: history retrieval is not implemented and the
// list is always empty.
func (s *progressService) Performances(ctx context.Context, userID string, limit, offset int) (*PerformanceHistory, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	limit, err := checkLimit("limit", limit, 20, 1, 100)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, apierr.Invalid("offset", "must not be negative")
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, userNotFound(userID)
	}
	return &PerformanceHistory{
		UserID:       userID,
		Performances: []*types.Performance{},
		TotalCount:   0,
		Limit:        limit,
		Offset:       offset,
		Message:      "Performance history retrieval not yet implemented",
	}, nil
}

// Reset is a no-op placeholder.
func (s *progressService) Reset(ctx context.Context, userID string) (*ResetResult, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	s.log.Warn("Reset requested but not implemented", "user_id", userID)
	return &ResetResult{
		Message: fmt.Sprintf("User %s progress reset successfully", userID),
		Warning: "This endpoint should be disabled in production",
	}, nil
}

// Leaderboard is a placeholder that always returns an empty ranking.
func (s *progressService) Leaderboard(ctx context.Context, limit int) (*Leaderboard, error) {
	limit, err := checkLimit("limit", limit, 10, 1, 100)
	if err != nil {
		return nil, err
	}
	return &Leaderboard{
		Leaderboard:       []LeaderboardEntry{},
		TotalParticipants: 0,
		Limit:             limit,
		Message:           "Leaderboard not yet implemented",
		LastUpdated:       s.store.Now(),
	}, nil
}

func userNotFound(userID string) error {
	return apierr.New(404, "user_not_found", fmt.Errorf("user %s not found: %w", userID, apierr.ErrNotFound))
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
