package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

const APIVersion = "1.0.0"

// Pinger is satisfied by *store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
	Now() time.Time
}

type HealthConfig struct {
	DBDriver       string
	StorageMode    string
	UploadMaxBytes int64
}

type HealthHandler struct {
	log *logger.Logger
	db  Pinger
	cfg HealthConfig
}

func NewHealthHandler(log *logger.Logger, db Pinger, cfg HealthConfig) *HealthHandler {
	return &HealthHandler{
		log: log.With("handler", "HealthHandler"),
		db:  db,
		cfg: cfg,
	}
}

// GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "Welcome to SightReadPro API!",
		"version":     APIVersion,
		"description": "Music sight-reading practice platform",
		"endpoints": gin.H{
			"upload_score":        "/upload/score",
			"get_daily_exercises": "/exercises/daily/{user_id}",
			"submit_performance":  "/users/submit_performance",
			"api_info":            "/api/info",
			"health":              "/health",
		},
		"features": []string{
			"Sheet music upload (PDF, JPG, PNG, MusicXML)",
			"MusicXML parsing",
			"Exercise generation and management",
			"User performance tracking",
			"XP and progression system",
			"Daily practice exercises",
		},
		"timestamp": h.db.Now(),
	})
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": h.db.Now(),
			"database":  "disconnected",
			"error":     "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": h.db.Now(),
		"database":  "connected",
		"version":   APIVersion,
	})
}

// GET /api/info
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "SightReadPro API",
		"version":     APIVersion,
		"description": "A comprehensive API for music sight-reading practice",
		"features": gin.H{
			"file_upload": gin.H{
				"supported_formats": []string{"PDF", "JPG", "JPEG", "PNG", "MusicXML", "XML"},
				"max_file_size":     humanBytes(h.cfg.UploadMaxBytes),
				"storage":           h.cfg.StorageMode,
			},
			"music_parsing": gin.H{
				"engine":       "musicxml",
				"capabilities": []string{"MusicXML parsing", "Exercise generation", "Difficulty assessment", "Measure-based chunking"},
			},
			"exercise_management": gin.H{
				"difficulty_levels": []string{"easy", "medium", "hard"},
				"xp_system":         "10-20 XP per exercise based on difficulty",
			},
			"user_progress": gin.H{
				"tracking":     []string{"XP", "level", "streak"},
				"achievements": []string{"streak_milestones", "level_ups", "exercise_completion"},
			},
		},
		"database": gin.H{
			"type":   h.cfg.DBDriver,
			"tables": []string{"users", "exercises", "performances"},
		},
	})
}

func humanBytes(n int64) string {
	const mb = 1 << 20
	if n > 0 && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
