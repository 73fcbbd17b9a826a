package app

import (
	"errors"
	"testing"
	"time"

	dbpkg "github.com/yungbote/sightreadpro-backend/internal/data/db"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
	"github.com/yungbote/sightreadpro-backend/internal/platform/objectstore"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DB_DRIVER", "SQLITE_PATH", "DB_SEED", "OBJECT_STORAGE_MODE", "UPLOADS_DIR",
		"SCORE_GCS_BUCKET_NAME", "STORAGE_EMULATOR_HOST", "UPLOAD_MAX_BYTES", "CHUNK_SIZE",
		"REDIS_ADDR", "UPLOAD_RATE_LIMIT", "UPLOAD_RATE_WINDOW_SECONDS", "CORS_ALLOW_ORIGINS",
		"OTEL_ENABLED", "OTEL_SAMPLE_RATIO",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(testLogger(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr() != ":8000" || cfg.DB.Driver != dbpkg.DriverSQLite || !cfg.Seed {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Storage.Mode != objectstore.ModeLocal || cfg.Storage.Dir != "uploads" {
		t.Fatalf("storage defaults: %+v", cfg.Storage)
	}
	if cfg.UploadMaxBytes != 10<<20 || cfg.ChunkSize != 4 {
		t.Fatalf("upload defaults: %d %d", cfg.UploadMaxBytes, cfg.ChunkSize)
	}
	if cfg.UploadRateLimit != 30 || cfg.UploadRateWin != time.Minute || cfg.Redis.Addr != "" {
		t.Fatalf("rate limit defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" || cfg.Otel.Enabled {
		t.Fatalf("cors/otel defaults: %+v", cfg)
	}
}

func TestLoadConfigOverridesAndFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("UPLOAD_MAX_BYTES", "-5")
	t.Setenv("CHUNK_SIZE", "two")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000, http://127.0.0.1:5173")
	t.Setenv("UPLOAD_RATE_WINDOW_SECONDS", "0")

	cfg, err := LoadConfig(testLogger(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9090" || cfg.DB.Driver != dbpkg.DriverPostgres {
		t.Fatalf("overrides: %+v", cfg)
	}
	if cfg.UploadMaxBytes != 10<<20 || cfg.ChunkSize != 4 || cfg.UploadRateWin != time.Minute {
		t.Fatalf("fallbacks: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://127.0.0.1:5173" {
		t.Fatalf("cors: %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigRejectsBadEnums(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	_, err := LoadConfig(testLogger(t))
	var dbErr *dbpkg.ConfigError
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected db ConfigError, got %v", err)
	}

	clearEnv(t)
	t.Setenv("OBJECT_STORAGE_MODE", "s3")
	_, err = LoadConfig(testLogger(t))
	var osErr *objectstore.ConfigError
	if !errors.As(err, &osErr) {
		t.Fatalf("expected objectstore ConfigError, got %v", err)
	}

	clearEnv(t)
	t.Setenv("OBJECT_STORAGE_MODE", "gcs")
	_, err = LoadConfig(testLogger(t))
	if !errors.As(err, &osErr) {
		t.Fatalf("gcs without bucket should fail, got %v", err)
	}
}
