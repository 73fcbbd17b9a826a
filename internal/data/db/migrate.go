package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/sightreadpro-backend/internal/domain/practice"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&practice.User{},
		&practice.Exercise{},
		&practice.Performance{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
