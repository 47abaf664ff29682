package engine

import (
	"fmt"
	"strings"

	"chemsaver-backend/internal/models"
)

// Config holds the pipeline's tunable behavior. Zero values fall back
// to defaults in New.
type Config struct {
	// TolerancePercent is the optimal band for status classification.
	TolerancePercent float64

	// ZeroUnderDosingSavings switches the financial convention for
	// under-dosing from a signed risk figure to zero.
	ZeroUnderDosingSavings bool
}

// Outcome is the structured result of one pipeline invocation. Result
// is nil when emission was suppressed; Status then carries the tag the
// orchestrator's caller should record for the tick (ERROR or NO_DATA).
type Outcome struct {
	Result   *models.OptimizationResult
	Status   models.StatusFlag
	Err      error
	Warnings []string
}

// Emitted reports whether the invocation produced a result.
func (o Outcome) Emitted() bool {
	return o.Result != nil
}

// Pipeline orchestrates validation, filtering, dosage computation,
// constraint enforcement, classification and financial evaluation for
// one well's sample stream. The pipeline itself holds no per-well
// history; all of it lives in the StreamState passed to Process.
type Pipeline struct {
	cfg Config
}

// New creates a pipeline, applying the default tolerance when none is
// configured.
func New(cfg Config) *Pipeline {
	if cfg.TolerancePercent <= 0 {
		cfg.TolerancePercent = DefaultTolerancePercent
	}
	return &Pipeline{cfg: cfg}
}

// Process runs one raw record through the pipeline and updates state.
// State must be loaded before and persisted after the call by the
// caller; invocations for a given well must not overlap.
func (p *Pipeline) Process(rec models.ProductionRecord, s models.WellSettings, state *models.StreamState) Outcome {
	if state == nil {
		state = models.NewStreamState()
	}
	if rec.Timestamp > 0 {
		state.LastAttemptTS = rec.Timestamp
	}

	v := ValidateRecord(rec, state)
	if v.Status == Rejected {
		if ShouldSuppress(rec.Timestamp, state, false) {
			return Outcome{
				Status:   models.StatusNoData,
				Err:      fmt.Errorf("%w: %s", ErrStaleness, strings.Join(v.Errors, "; ")),
				Warnings: v.Warnings,
			}
		}
		return Outcome{
			Status:   models.StatusError,
			Err:      fmt.Errorf("%w: %s", ErrValidation, strings.Join(v.Errors, "; ")),
			Warnings: v.Warnings,
		}
	}

	sample := v.Sample
	warnings := v.Warnings

	accepted := AcceptSpike(sample, state)
	if !accepted {
		if ShouldSuppress(sample.Timestamp, state, false) {
			return Outcome{
				Status:   models.StatusNoData,
				Err:      fmt.Errorf("%w: %s on stale stream", ErrStaleness, ErrSensorArtifact),
				Warnings: warnings,
			}
		}
		// Reuse the last known-good flow values for this tick; the
		// injection rate is pump telemetry, not the suspect sensor.
		prev := state.LastAcceptedSample
		warnings = append(warnings, fmt.Sprintf(
			"flow spike %g -> %g BPD rejected, reusing last accepted values",
			prev.GrossFluidRate, sample.GrossFluidRate))
		sample.GrossFluidRate = prev.GrossFluidRate
		sample.WaterCut = prev.WaterCut
	}

	result, err := p.evaluate(sample, s)
	if err != nil {
		return Outcome{Status: models.StatusError, Err: err, Warnings: warnings}
	}

	p.advanceState(state, rec, sample, accepted)

	return Outcome{Result: result, Status: result.StatusFlag, Warnings: warnings}
}

// evaluate runs the pure computation stages on a filtered sample.
func (p *Pipeline) evaluate(sample models.ProductionSample, s models.WellSettings) (*models.OptimizationResult, error) {
	if !sample.PumpOn() {
		// Well not producing: recommendation is zero and the entire
		// actual injection spend counts as recoverable waste.
		return &models.OptimizationResult{
			Timestamp:             sample.Timestamp,
			RecommendedRateGPD:    0,
			ActualRateGPD:         sample.CurrentInjectionRate,
			SavingsOpportunityUSD: EvaluateSavings(sample.CurrentInjectionRate, 0, s.CostPerGallon, p.cfg.ZeroUnderDosingSavings),
			StatusFlag:            models.StatusPumpOff,
			TargetPPM:             s.TargetPPM,
		}, nil
	}

	raw, err := ComputeDosage(sample, s)
	if err != nil {
		return nil, err
	}
	recommended := Clamp(raw, s)

	return &models.OptimizationResult{
		Timestamp:             sample.Timestamp,
		RecommendedRateGPD:    recommended,
		ActualRateGPD:         sample.CurrentInjectionRate,
		SavingsOpportunityUSD: EvaluateSavings(sample.CurrentInjectionRate, recommended, s.CostPerGallon, p.cfg.ZeroUnderDosingSavings),
		StatusFlag:            ClassifyStatus(sample, recommended, p.cfg.TolerancePercent),
		WaterBPD:              WaterVolumeBPD(sample),
		CurrentPPM:            CurrentPPM(sample, s),
		TargetPPM:             s.TargetPPM,
	}, nil
}

// advanceState records the sample in stream history after a successful
// emission. A spike-substituted sample never becomes the accepted
// baseline; only the original telemetry does.
func (p *Pipeline) advanceState(state *models.StreamState, rec models.ProductionRecord, sample models.ProductionSample, accepted bool) {
	if accepted {
		snapshot := sample
		state.LastAcceptedSample = &snapshot
	}
	if rec.WaterCut != nil && *rec.WaterCut >= 0 && *rec.WaterCut <= 100 {
		wc := *rec.WaterCut
		state.LastAcceptedWaterCut = &wc
	}
	state.LastEmissionTS = sample.Timestamp
}
