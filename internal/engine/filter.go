package engine

import (
	"math"

	"chemsaver-backend/internal/models"
)

// Safety thresholds. Engine-wide constants, not per-well settings;
// named so boundary tests can probe them exactly.
const (
	// SpikeThresholdPercent is the flow-rate change, relative to the
	// last accepted sample, at or above which a sample is treated as a
	// sensor error.
	SpikeThresholdPercent = 500.0

	// SpikeWindowSeconds bounds the elapsed interval within which the
	// spike threshold applies. Changes over longer intervals are
	// plausible well behavior.
	SpikeWindowSeconds = 60

	// StalenessTimeoutSeconds is the silence window after the last
	// emission beyond which an untrustworthy sample suppresses output.
	StalenessTimeoutSeconds = 300
)

// AcceptSpike reports whether a sample's flow rate is plausible given
// the last accepted sample. The first sample for a well is always
// accepted. A change of SpikeThresholdPercent or more within
// SpikeWindowSeconds is rejected as a sensor artifact.
func AcceptSpike(sample models.ProductionSample, state *models.StreamState) bool {
	if state == nil || state.LastAcceptedSample == nil {
		return true
	}
	prev := state.LastAcceptedSample
	if prev.GrossFluidRate <= 0 {
		// No baseline to compute relative change against.
		return true
	}

	elapsed := sample.Timestamp - prev.Timestamp
	if elapsed < 0 || elapsed > SpikeWindowSeconds {
		return true
	}

	changePercent := math.Abs(sample.GrossFluidRate-prev.GrossFluidRate) / prev.GrossFluidRate * 100
	return changePercent < SpikeThresholdPercent
}

// ShouldSuppress decides the staleness null case: output is suppressed
// when the silence window since the last emission has elapsed and the
// current tick has nothing trustworthy to emit. A fresh fully-valid
// sample after a gap is emitted normally; the gap alone never
// suppresses.
func ShouldSuppress(now int64, state *models.StreamState, trustworthy bool) bool {
	if trustworthy {
		return false
	}
	if state == nil || state.LastEmissionTS == 0 {
		return false
	}
	return now-state.LastEmissionTS > StalenessTimeoutSeconds
}
