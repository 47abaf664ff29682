package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chemsaver-backend/internal/models"
	"chemsaver-backend/internal/settings"
)

// optimizeRequest carries one record for on-demand evaluation. Settings
// are optional overrides; omitted fields use defaults.
type optimizeRequest struct {
	Record   models.ProductionRecord    `json:"record"`
	Settings *models.WellSettingsUpdate `json:"settings"`
}

// batchRequest carries an ordered record sequence evaluated against a
// single evolving stream state.
type batchRequest struct {
	Records  []models.ProductionRecord  `json:"records"`
	Settings *models.WellSettingsUpdate `json:"settings"`
}

// tickResponse is one evaluated record. Result is present only when a
// recommendation was emitted.
type tickResponse struct {
	Status   models.StatusFlag          `json:"status"`
	Result   *models.OptimizationResult `json:"result,omitempty"`
	Error    string                     `json:"error,omitempty"`
	Warnings []string                   `json:"warnings,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handleOptimize evaluates a single record statelessly: no history, no
// persistence. Useful for what-if checks from dashboards.
func (s *Server) handleOptimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolved := settings.Merge(req.Settings)
	outcome := s.pipeline.Process(req.Record, resolved, models.NewStreamState())

	c.JSON(http.StatusOK, toTickResponse(outcome.Status, outcome.Result, outcome.Err, outcome.Warnings))
}

// handleBatch evaluates an ordered record sequence with shared stream
// state, so the spike filter and forward fills behave as they would on
// the live stream.
func (s *Server) handleBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records must not be empty"})
		return
	}

	resolved := settings.Merge(req.Settings)
	state := models.NewStreamState()

	responses := make([]tickResponse, 0, len(req.Records))
	for _, rec := range req.Records {
		outcome := s.pipeline.Process(rec, resolved, state)
		responses = append(responses, toTickResponse(outcome.Status, outcome.Result, outcome.Err, outcome.Warnings))
	}

	c.JSON(http.StatusOK, gin.H{"ticks": responses})
}

func (s *Server) handleGetSettings(c *gin.Context) {
	wellID := c.Param("well_id")

	stored, err := s.db.GetWellSettings(c.Request.Context(), wellID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"well_id":  wellID,
		"stored":   stored != nil,
		"settings": settings.Resolve(stored),
	})
}

func (s *Server) handleSaveSettings(c *gin.Context) {
	wellID := c.Param("well_id")

	var req models.WellSettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolved := settings.Merge(&req)
	if violations := settings.Validate(resolved); len(violations) > 0 {
		msgs := make([]string, 0, len(violations))
		for _, v := range violations {
			msgs = append(msgs, v.Error())
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": msgs})
		return
	}

	if err := s.db.SaveWellSettings(c.Request.Context(), wellID, resolved); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateSettings(wellID)
	}

	c.JSON(http.StatusOK, gin.H{"well_id": wellID, "settings": resolved})
}

func (s *Server) handleGetResults(c *gin.Context) {
	wellID := c.Param("well_id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	results, err := s.db.GetRecentResults(c.Request.Context(), wellID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"well_id": wellID, "results": results})
}

// handleGetSummary reports cumulative savings opportunity over a
// trailing window (default 30 days). Only positive entries count.
func (s *Server) handleGetSummary(c *gin.Context) {
	wellID := c.Param("well_id")

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}

	since := time.Now().AddDate(0, 0, -days)
	total, err := s.db.GetSavingsSummary(c.Request.Context(), wellID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"well_id":             wellID,
		"days":                days,
		"savings_opportunity": total,
	})
}

// toTickResponse converts a pipeline outcome to the API shape, with
// display rounding applied.
func toTickResponse(status models.StatusFlag, result *models.OptimizationResult, err error, warnings []string) tickResponse {
	resp := tickResponse{Status: status, Warnings: warnings}
	if result != nil {
		rounded := result.Rounded()
		resp.Result = &rounded
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
