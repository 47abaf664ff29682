package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"chemsaver-backend/internal/engine"
	"chemsaver-backend/internal/models"
)

// SettingsStore is what the API needs from the database for settings
// and reporting endpoints. Satisfied by database.ClickHouseDB.
type SettingsStore interface {
	SaveWellSettings(ctx context.Context, wellID string, s models.WellSettings) error
	GetWellSettings(ctx context.Context, wellID string) (*models.WellSettings, error)
	GetRecentResults(ctx context.Context, wellID string, limit int) ([]models.OptimizationResult, error)
	GetSavingsSummary(ctx context.Context, wellID string, since time.Time) (float64, error)
}

// SettingsInvalidator lets the API tell the streaming side that a
// well's settings changed. Satisfied by services.OptimizerService.
type SettingsInvalidator interface {
	InvalidateSettings(wellID string)
}

// Server exposes the HTTP API for on-demand optimization, settings
// management and reporting.
type Server struct {
	db          SettingsStore
	pipeline    *engine.Pipeline
	invalidator SettingsInvalidator
}

// NewServer creates the API server. invalidator may be nil when no
// streaming service is running (e.g. in tests).
func NewServer(db SettingsStore, pipeline *engine.Pipeline, invalidator SettingsInvalidator) *Server {
	return &Server{db: db, pipeline: pipeline, invalidator: invalidator}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/optimize", s.handleOptimize)
		api.POST("/batch", s.handleBatch)
		api.GET("/settings/:well_id", s.handleGetSettings)
		api.POST("/settings/:well_id", s.handleSaveSettings)
		api.GET("/results/:well_id", s.handleGetResults)
		api.GET("/summary/:well_id", s.handleGetSummary)
	}

	return r
}
