package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

type Config struct {
	Driver     Driver
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string

	// Silent disables gorm's own query logging.
	Silent bool
}

// ConfigError reports an unusable database configuration.
type ConfigError struct {
	Driver string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid DB_DRIVER=%q (allowed: %q, %q)", e.Driver, DriverSQLite, DriverPostgres)
}

func (c Config) postgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresName,
	)
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch Driver(strings.ToLower(string(c.Driver))) {
	case DriverPostgres:
		return postgres.Open(c.postgresDSN()), nil
	case DriverSQLite, "":
		path := c.SQLitePath
		if path == "" {
			path = "sightreadpro.db"
		}
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		// foreign keys stay off: orphan checks happen at write time in the services.
		return sqlite.Open(path + "?_busy_timeout=5000&_journal_mode=WAL"), nil
	default:
		return nil, &ConfigError{Driver: string(c.Driver)}
	}
}

// Open connects to the configured database. It does not migrate.
func Open(cfg Config, logg *logger.Logger) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	if cfg.Silent {
		gormLog = gormLogger.Default.LogMode(gormLogger.Silent)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	if logg != nil {
		logg.With("service", "Database").Info("Database connected", "driver", cfg.Driver)
	}
	return conn, nil
}
