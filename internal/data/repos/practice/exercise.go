package practice

import (
	"gorm.io/gorm"

	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/platform/dbctx"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

type ExerciseRepo interface {
	Create(dbc dbctx.Context, exercises []*types.Exercise) ([]*types.Exercise, error)
	// Sample returns up to limit exercises in random order, optionally
	// restricted to one difficulty.
	Sample(dbc dbctx.Context, limit int, difficulty types.Difficulty) ([]*types.Exercise, error)
	// GetByID returns (nil, nil) when the exercise does not exist.
	GetByID(dbc dbctx.Context, id int64) (*types.Exercise, error)
	Count(dbc dbctx.Context) (int64, error)
}

type exerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExerciseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseRepo {
	return &exerciseRepo{
		db:  db,
		log: baseLog.With("repo", "ExerciseRepo"),
	}
}

func (r *exerciseRepo) Create(dbc dbctx.Context, exercises []*types.Exercise) ([]*types.Exercise, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(exercises) == 0 {
		return []*types.Exercise{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) Sample(dbc dbctx.Context, limit int, difficulty types.Difficulty) ([]*types.Exercise, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	results := []*types.Exercise{}
	if limit <= 0 {
		return results, nil
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Exercise{})
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}
	if err := q.Order("RANDOM()").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *exerciseRepo) GetByID(dbc dbctx.Context, id int64) (*types.Exercise, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return nil, nil
	}
	var rows []*types.Exercise
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *exerciseRepo) Count(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).Model(&types.Exercise{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
