package app

import (
	"github.com/yungbote/sightreadpro-backend/internal/http"
	httpH "github.com/yungbote/sightreadpro-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sightreadpro-backend/internal/http/middleware"
	"github.com/yungbote/sightreadpro-backend/internal/observability"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Exercise *httpH.ExerciseHandler
	User     *httpH.UserHandler
	Upload   *httpH.UploadHandler
}

func wireHandlers(log *logger.Logger, cfg Config, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(log, clients.Store, httpH.HealthConfig{
			DBDriver:       string(cfg.DB.Driver),
			StorageMode:    string(cfg.Storage.Mode),
			UploadMaxBytes: cfg.UploadMaxBytes,
		}),
		Exercise: httpH.NewExerciseHandler(log, services.Catalog),
		User:     httpH.NewUserHandler(log, services.Progress),
		Upload:   httpH.NewUploadHandler(log, services.Ingestion),
	}
}

func wireServer(log *logger.Logger, cfg Config, clients Clients, handlers Handlers, metrics *observability.Metrics) *http.Server {
	log.Info("Wiring router...")
	var limiter httpMW.Allower
	if clients.UploadLimiter != nil {
		limiter = clients.UploadLimiter
	}
	return http.NewServer(cfg.Addr(), http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.Otel.ServiceName,
		Tracing:         cfg.Otel.Enabled,
		CORSOrigins:     cfg.CORSOrigins,
		UploadLimiter:   limiter,
		HealthHandler:   handlers.Health,
		ExerciseHandler: handlers.Exercise,
		UserHandler:     handlers.User,
		UploadHandler:   handlers.Upload,
	})
}
