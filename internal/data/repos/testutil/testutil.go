package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/sightreadpro-backend/internal/data/db"
	"github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logg, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return logg
}

// DB opens a migrated, empty database private to the test. It uses sqlite in
// a temp dir unless TEST_POSTGRES_DSN is set.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			err = db.Exec("DROP TABLE IF EXISTS performances, exercises, users").Error
		}
	} else {
		path := filepath.Join(tb.TempDir(), "test.db")
		db, err = gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), cfg)
	}
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	if err := dbpkg.AutoMigrateAll(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeededDB is DB plus the embedded sample catalog.
func SeededDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db := DB(tb)
	exercises, err := dbpkg.LoadSeed("", time.Now())
	if err != nil {
		tb.Fatalf("load seed: %v", err)
	}
	if _, err := dbpkg.SeedExercises(db, exercises); err != nil {
		tb.Fatalf("seed: %v", err)
	}
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// Exercises inserts n exercises of the given difficulty.
func Exercises(tb testing.TB, db *gorm.DB, difficulty practice.Difficulty, n int) []*practice.Exercise {
	tb.Helper()
	rows := make([]*practice.Exercise, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, &practice.Exercise{
			Measures:      "1-4",
			Difficulty:    difficulty,
			Title:         string(difficulty) + " drill",
			KeySignature:  "C",
			TimeSignature: "4/4",
			Notes:         []string{"C4", "E4", "G4"},
			RhythmPattern: []string{"quarter", "quarter", "half"},
			XPReward:      difficulty.XPReward(),
			CreatedAt:     time.Now(),
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		tb.Fatalf("insert exercises: %v", err)
	}
	return rows
}
