package objectstore

import (
	"context"

	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

// Open builds the Store selected by cfg.Mode.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (Store, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Mode == ModeLocal {
		s, err := NewLocalStore(cfg.Dir, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := NewGCSStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return s, nil
}
