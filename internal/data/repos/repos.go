package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/sightreadpro-backend/internal/data/repos/practice"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

type UserRepo = practice.UserRepo
type ExerciseRepo = practice.ExerciseRepo
type PerformanceRepo = practice.PerformanceRepo

type PerformanceStats = practice.PerformanceStats

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return practice.NewUserRepo(db, baseLog)
}
func NewExerciseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseRepo {
	return practice.NewExerciseRepo(db, baseLog)
}
func NewPerformanceRepo(db *gorm.DB, baseLog *logger.Logger) PerformanceRepo {
	return practice.NewPerformanceRepo(db, baseLog)
}
