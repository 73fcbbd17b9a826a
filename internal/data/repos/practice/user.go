package practice

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/platform/dbctx"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

type UserRepo interface {
	// Upsert writes u, replacing every column of an existing row with the same id.
	Upsert(dbc dbctx.Context, u *types.User) (*types.User, error)
	// GetByID returns (nil, nil) when the user does not exist.
	GetByID(dbc dbctx.Context, userID string) (*types.User, error)
	// GetByIDForUpdate is GetByID with a row lock where the dialect supports one.
	GetByIDForUpdate(dbc dbctx.Context, userID string) (*types.User, error)
	UpdateProgress(dbc dbctx.Context, u *types.User) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{
		db:  db,
		log: baseLog.With("repo", "UserRepo"),
	}
}

func (r *userRepo) Upsert(dbc dbctx.Context, u *types.User) (*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, userID string) (*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return r.get(t.WithContext(dbc.Ctx), userID)
}

func (r *userRepo) GetByIDForUpdate(dbc dbctx.Context, userID string) (*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.get(q, userID)
}

func (r *userRepo) get(q *gorm.DB, userID string) (*types.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}
	var rows []*types.User
	if err := q.Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userRepo) UpdateProgress(dbc dbctx.Context, u *types.User) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("user_id = ?", u.UserID).
		Updates(map[string]any{
			"xp":               u.XP,
			"streak":           u.Streak,
			"last_active_date": u.LastActiveDate,
			"level":            u.Level,
		}).Error
}
