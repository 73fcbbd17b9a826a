package app

import (
	"strings"
	"time"

	dbpkg "github.com/yungbote/sightreadpro-backend/internal/data/db"
	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/observability"
	"github.com/yungbote/sightreadpro-backend/internal/platform/envutil"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
	"github.com/yungbote/sightreadpro-backend/internal/platform/objectstore"
	"github.com/yungbote/sightreadpro-backend/internal/platform/ratelimit"
	"github.com/yungbote/sightreadpro-backend/internal/services"
)

type Config struct {
	Port string

	DB       dbpkg.Config
	Seed     bool
	SeedFile string

	Storage        objectstore.Config
	UploadMaxBytes int64
	ChunkSize      int

	Redis           ratelimit.RedisConfig
	UploadRateLimit int
	UploadRateWin   time.Duration

	CORSOrigins []string

	Metrics         bool
	DBStatsInterval time.Duration
	ShutdownTimeout time.Duration
	Otel            observability.OtelConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port: envutil.String("PORT", "8000", log),
		DB: dbpkg.Config{
			Driver:           dbpkg.Driver(strings.ToLower(envutil.String("DB_DRIVER", string(dbpkg.DriverSQLite), log))),
			SQLitePath:       envutil.String("SQLITE_PATH", "sightreadpro.db", log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "sightreadpro", log),
		},
		Seed:     envutil.Bool("DB_SEED", true, log),
		SeedFile: envutil.String("SEED_FILE", "", log),

		UploadMaxBytes: int64(envutil.Int("UPLOAD_MAX_BYTES", int(services.DefaultUploadMaxBytes), log)),
		ChunkSize:      envutil.Int("CHUNK_SIZE", types.DefaultChunkSize, log),

		Redis: ratelimit.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", log),
			DB:       envutil.Int("REDIS_DB", 0, log),
		},
		UploadRateLimit: envutil.Int("UPLOAD_RATE_LIMIT", 30, log),
		UploadRateWin:   time.Duration(envutil.Int("UPLOAD_RATE_WINDOW_SECONDS", 60, log)) * time.Second,

		CORSOrigins: envutil.List("CORS_ALLOW_ORIGINS", []string{"*"}),

		Metrics:         envutil.Bool("METRICS_ENABLED", true, log),
		DBStatsInterval: time.Duration(envutil.Int("DB_STATS_INTERVAL_SECONDS", 15, log)) * time.Second,
		ShutdownTimeout: time.Duration(envutil.Int("SHUTDOWN_TIMEOUT_SECONDS", 10, log)) * time.Second,

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "sightreadpro-api", log),
			Environment: envutil.String("APP_ENV", "development", log),
			Version:     envutil.String("APP_VERSION", "1.0.0", log),
			Exporter:    observability.Exporter(strings.ToLower(envutil.String("OTEL_EXPORTER", string(observability.ExporterStdout), log))),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true, log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1.0, log),
		},
	}

	switch cfg.DB.Driver {
	case dbpkg.DriverSQLite, dbpkg.DriverPostgres:
	default:
		return cfg, &dbpkg.ConfigError{Driver: string(cfg.DB.Driver)}
	}

	storage, err := objectstore.ResolveConfigFromEnv()
	if err != nil {
		return cfg, err
	}
	cfg.Storage = storage

	if cfg.UploadMaxBytes <= 0 {
		log.Warn("UPLOAD_MAX_BYTES must be positive, using default", "default", services.DefaultUploadMaxBytes)
		cfg.UploadMaxBytes = services.DefaultUploadMaxBytes
	}
	if cfg.ChunkSize <= 0 {
		log.Warn("CHUNK_SIZE must be positive, using default", "default", types.DefaultChunkSize)
		cfg.ChunkSize = types.DefaultChunkSize
	}
	if cfg.UploadRateLimit <= 0 || cfg.UploadRateWin <= 0 {
		log.Warn("Upload rate limit settings must be positive, using defaults")
		cfg.UploadRateLimit, cfg.UploadRateWin = 30, time.Minute
	}
	if cfg.DBStatsInterval <= 0 {
		cfg.DBStatsInterval = 15 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return cfg, nil
}

func (c Config) Addr() string { return ":" + c.Port }
