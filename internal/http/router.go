package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/sightreadpro-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sightreadpro-backend/internal/http/middleware"
	"github.com/yungbote/sightreadpro-backend/internal/observability"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	Tracing     bool
	CORSOrigins []string

	// UploadLimiter guards POST /upload/score; nil disables it.
	UploadLimiter httpMW.Allower

	HealthHandler   *httpH.HealthHandler
	ExerciseHandler *httpH.ExerciseHandler
	UserHandler     *httpH.UserHandler
	UploadHandler   *httpH.UploadHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/health", cfg.HealthHandler.Health)
		r.GET("/api/info", cfg.HealthHandler.Info)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Exercises
	if h := cfg.ExerciseHandler; h != nil {
		ex := r.Group("/exercises")
		ex.GET("/", h.List)
		ex.GET("/daily/:user_id", h.Daily)
		ex.GET("/difficulty/:difficulty", h.ByDifficulty)
		ex.GET("/random/:count", h.Random)
		ex.GET("/search/:query", h.Search)
		ex.GET("/stats/summary", h.Summary)
		ex.GET("/:exercise_id", h.Get)
	}

	// Users
	if h := cfg.UserHandler; h != nil {
		users := r.Group("/users")
		users.POST("/submit_performance", h.SubmitPerformance)
		users.GET("/leaderboard", h.Leaderboard)
		users.GET("/:user_id/progress", h.Progress)
		users.GET("/:user_id/profile", h.Profile)
		users.GET("/:user_id/stats", h.Stats)
		users.GET("/:user_id/performances", h.Performances)
		users.POST("/:user_id/reset", h.Reset)
	}

	// Uploads
	if h := cfg.UploadHandler; h != nil {
		up := r.Group("/upload")
		up.POST("/score", httpMW.RateLimit(cfg.UploadLimiter, cfg.Metrics, cfg.Log), h.UploadScore)
		up.GET("/files", h.ListFiles)
		up.DELETE("/files/:filename", h.DeleteFile)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": gin.H{
			"message": "The requested resource was not found",
			"code":    "not_found",
			"path":    c.Request.URL.Path,
		}})
	})

	return r
}
