package app

import (
	"github.com/yungbote/sightreadpro-backend/internal/observability"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
	"github.com/yungbote/sightreadpro-backend/internal/services"
)

type Services struct {
	Progress  services.ProgressService
	Catalog   services.CatalogService
	Ingestion services.IngestionService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	return Services{
		Progress: services.NewProgressService(log, clients.Store, metrics),
		Catalog:  services.NewCatalogService(log, clients.Store),
		Ingestion: services.NewIngestionService(log, clients.Objects, clients.Parser, metrics, services.IngestionConfig{
			MaxBytes:  cfg.UploadMaxBytes,
			ChunkSize: cfg.ChunkSize,
		}),
	}
}
