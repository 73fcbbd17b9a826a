package practice

import (
	"database/sql"

	"gorm.io/gorm"

	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/platform/dbctx"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

// PerformanceStats aggregates a user's submissions.
type PerformanceStats struct {
	Count        int64
	AverageScore float64
}

type PerformanceRepo interface {
	Create(dbc dbctx.Context, p *types.Performance) (int64, error)
	StatsForUser(dbc dbctx.Context, userID string) (PerformanceStats, error)
}

type performanceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPerformanceRepo(db *gorm.DB, baseLog *logger.Logger) PerformanceRepo {
	return &performanceRepo{
		db:  db,
		log: baseLog.With("repo", "PerformanceRepo"),
	}
}

func (r *performanceRepo) Create(dbc dbctx.Context, p *types.Performance) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (r *performanceRepo) StatsForUser(dbc dbctx.Context, userID string) (PerformanceStats, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row struct {
		Total   int64
		Average sql.NullFloat64
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Performance{}).
		Select("COUNT(*) AS total, AVG(score) AS average").
		Where("user_id = ?", userID).
		Scan(&row).Error; err != nil {
		return PerformanceStats{}, err
	}
	stats := PerformanceStats{Count: row.Total}
	if row.Average.Valid {
		stats.AverageScore = row.Average.Float64
	}
	return stats, nil
}
