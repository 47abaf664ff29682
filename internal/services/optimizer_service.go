package services

import (
	"context"
	"log"
	"sync"
	"time"

	"chemsaver-backend/internal/engine"
	"chemsaver-backend/internal/models"
	"chemsaver-backend/internal/settings"
)

// ResultStore is the persistence surface the optimizer needs. Satisfied
// by database.ClickHouseDB.
type ResultStore interface {
	SaveSample(ctx context.Context, wellID string, sample models.ProductionSample) error
	SaveResult(ctx context.Context, wellID string, result models.OptimizationResult) error
	SaveSuppressedTick(ctx context.Context, wellID string, ts int64, flag models.StatusFlag, reason string) error
	GetWellSettings(ctx context.Context, wellID string) (*models.WellSettings, error)
}

// StateStore holds per-well stream state between ticks. Satisfied by
// state.Store.
type StateStore interface {
	Load(ctx context.Context, wellID string) (*models.StreamState, error)
	Save(ctx context.Context, wellID string, state *models.StreamState) error
}

// OptimizerService consumes production telemetry, runs each record
// through the dosage pipeline and persists the outcome. A single
// goroutine drains the ingest channel, which serializes processing per
// well without locking.
type OptimizerService struct {
	db       ResultStore
	states   StateStore
	pipeline *engine.Pipeline

	// Input channel from MQTT subscriber
	IngestChan chan *models.IngestRecord

	// Output channel to MQTT publisher
	ResultChan chan *models.WellResult

	// Settings cache so a tick doesn't hit the database every time
	settingsTTL time.Duration
	mu          sync.RWMutex
	cached      map[string]cachedSettings
}

type cachedSettings struct {
	resolved  models.WellSettings
	fetchedAt time.Time
}

// OptimizerServiceConfig holds configuration for optimizer service
type OptimizerServiceConfig struct {
	IngestChannelSize      int
	ResultChannelSize      int
	SettingsCacheSeconds   int
	TolerancePercent       float64
	ZeroUnderDosingSavings bool
}

// DefaultOptimizerServiceConfig returns default configuration
func DefaultOptimizerServiceConfig() OptimizerServiceConfig {
	return OptimizerServiceConfig{
		IngestChannelSize:    100,
		ResultChannelSize:    100,
		SettingsCacheSeconds: 30,
	}
}

// NewOptimizerService creates a new optimizer service
func NewOptimizerService(db ResultStore, states StateStore, config OptimizerServiceConfig) *OptimizerService {
	return &OptimizerService{
		db:     db,
		states: states,
		pipeline: engine.New(engine.Config{
			TolerancePercent:       config.TolerancePercent,
			ZeroUnderDosingSavings: config.ZeroUnderDosingSavings,
		}),
		IngestChan:  make(chan *models.IngestRecord, config.IngestChannelSize),
		ResultChan:  make(chan *models.WellResult, config.ResultChannelSize),
		settingsTTL: time.Duration(config.SettingsCacheSeconds) * time.Second,
		cached:      make(map[string]cachedSettings),
	}
}

// Start begins processing telemetry from the ingest channel.
// Runs until context is cancelled
func (os *OptimizerService) Start(ctx context.Context) {
	log.Println("OptimizerService: Starting...")

	for {
		select {
		case <-ctx.Done():
			log.Println("OptimizerService: Shutting down...")
			close(os.ResultChan)
			log.Println("OptimizerService: Shutdown complete")
			return
		case rec, ok := <-os.IngestChan:
			if !ok {
				close(os.ResultChan)
				return
			}
			os.processRecord(ctx, rec)
		}
	}
}

// processRecord handles a single telemetry record end to end
func (os *OptimizerService) processRecord(ctx context.Context, ingest *models.IngestRecord) {
	wellID := ingest.WellID

	state, err := os.states.Load(ctx, wellID)
	if err != nil {
		log.Printf("Error loading state for %s: %v", wellID, err)
		state = models.NewStreamState()
	}

	wellSettings := os.resolveSettings(ctx, wellID)

	outcome := os.pipeline.Process(ingest.Record, wellSettings, state)
	for _, w := range outcome.Warnings {
		log.Printf("Well %s: %s", wellID, w)
	}

	if !outcome.Emitted() {
		log.Printf("Well %s: tick suppressed (%s): %v", wellID, outcome.Status, outcome.Err)
		reason := ""
		if outcome.Err != nil {
			reason = outcome.Err.Error()
		}
		if err := os.db.SaveSuppressedTick(ctx, wellID, ingest.Record.Timestamp, outcome.Status, reason); err != nil {
			log.Printf("Error saving suppressed tick for %s: %v", wellID, err)
		}
		os.persistState(ctx, wellID, state)
		return
	}

	result := *outcome.Result

	sample := models.ProductionSample{
		Timestamp:            result.Timestamp,
		GrossFluidRate:       derefOrZero(ingest.Record.GrossFluidRate),
		WaterCut:             derefOrZero(ingest.Record.WaterCut),
		CurrentInjectionRate: derefOrZero(ingest.Record.CurrentInjectionRate),
	}
	if err := os.db.SaveSample(ctx, wellID, sample); err != nil {
		log.Printf("Error saving sample for %s: %v", wellID, err)
	}

	if err := os.db.SaveResult(ctx, wellID, result); err != nil {
		// The tick still happened: the stream history and emission
		// clock advance even when the result insert fails.
		log.Printf("Error saving result for %s: %v", wellID, err)
		os.persistState(ctx, wellID, state)
		return
	}

	log.Printf("Well %s: status=%s recommended=%.3f actual=%.3f savings=%.2f",
		wellID, result.StatusFlag, result.RecommendedRateGPD, result.ActualRateGPD, result.SavingsOpportunityUSD)

	// Forward to publisher (non-blocking, drop if full)
	select {
	case os.ResultChan <- &models.WellResult{WellID: wellID, Result: result}:
	default:
		log.Printf("Warning: Result channel full, dropping recommendation for %s", wellID)
	}

	os.persistState(ctx, wellID, state)
}

// persistState writes updated stream state back to the store
func (os *OptimizerService) persistState(ctx context.Context, wellID string, state *models.StreamState) {
	if err := os.states.Save(ctx, wellID, state); err != nil {
		log.Printf("Error saving state for %s: %v", wellID, err)
	}
}

// resolveSettings returns effective settings for a well, consulting
// the cache before the database. Defaults apply when nothing is stored
// or the lookup fails.
func (os *OptimizerService) resolveSettings(ctx context.Context, wellID string) models.WellSettings {
	os.mu.RLock()
	entry, ok := os.cached[wellID]
	os.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < os.settingsTTL {
		return entry.resolved
	}

	stored, err := os.db.GetWellSettings(ctx, wellID)
	if err != nil {
		// Store failure, not a missing record. Fall back to defaults
		// for this tick only; caching them would pin wrong settings
		// for the TTL after the store recovers.
		log.Printf("Error loading settings for %s, using defaults for this tick: %v", wellID, err)
		return settings.Resolve(nil)
	}
	resolved := settings.Resolve(stored)

	os.mu.Lock()
	os.cached[wellID] = cachedSettings{resolved: resolved, fetchedAt: time.Now()}
	os.mu.Unlock()

	return resolved
}

// InvalidateSettings drops a well's cached settings. Called by the API
// layer after a settings save so the next tick picks up the change.
func (os *OptimizerService) InvalidateSettings(wellID string) {
	os.mu.Lock()
	delete(os.cached, wellID)
	os.mu.Unlock()
}

func derefOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
