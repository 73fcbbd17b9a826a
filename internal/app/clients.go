package app

import (
	"context"
	"fmt"

	"github.com/yungbote/sightreadpro-backend/internal/data/store"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
	"github.com/yungbote/sightreadpro-backend/internal/platform/objectstore"
	"github.com/yungbote/sightreadpro-backend/internal/platform/ratelimit"
	"github.com/yungbote/sightreadpro-backend/internal/scores"
)

type Clients struct {
	Store   *store.Store
	Objects objectstore.Store
	Parser  scores.Parser
	// Redis and UploadLimiter are nil when REDIS_ADDR is unset.
	Redis         *ratelimit.RedisCounter
	UploadLimiter *ratelimit.Limiter
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Database
	st, err := store.Open(ctx, store.Config{DB: cfg.DB, Seed: cfg.Seed, SeedFile: cfg.SeedFile}, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init store: %w", err)
	}
	c := Clients{Store: st, Parser: scores.NewMusicXMLParser(log)}

	// Object storage
	objects, err := objectstore.Open(ctx, cfg.Storage, log)
	if err != nil {
		c.Close(log)
		return Clients{}, fmt.Errorf("init object storage: %w", err)
	}
	c.Objects = objects

	// Redis
	if cfg.Redis.Addr != "" {
		counter, err := ratelimit.NewRedisCounter(ctx, cfg.Redis, log)
		if err != nil {
			c.Close(log)
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		c.Redis = counter
		limiter, err := ratelimit.NewLimiter(counter, "sightread:upload", cfg.UploadRateLimit, cfg.UploadRateWin, log)
		if err != nil {
			c.Close(log)
			return Clients{}, fmt.Errorf("init upload limiter: %w", err)
		}
		c.UploadLimiter = limiter
	} else {
		log.Info("REDIS_ADDR not set; upload rate limiting disabled")
	}

	return c, nil
}

func (c Clients) Close(log *logger.Logger) {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("Failed to close redis", "error", err)
		}
	}
	if closer, ok := c.Objects.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn("Failed to close object storage", "error", err)
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			log.Warn("Failed to close database", "error", err)
		}
	}
}
