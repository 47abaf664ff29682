package models

import "math"

// StatusFlag classifies a well's dosing state for one result.
type StatusFlag string

const (
	StatusOptimal     StatusFlag = "OPTIMAL"
	StatusOverDosing  StatusFlag = "OVER_DOSING"
	StatusUnderDosing StatusFlag = "UNDER_DOSING"
	StatusPumpOff     StatusFlag = "PUMP_OFF"

	// Emitted by the orchestrator only, never by the classifier.
	StatusError  StatusFlag = "ERROR"
	StatusNoData StatusFlag = "NO_DATA"
)

// OptimizationResult is the output record written to the results store,
// one per accepted sample.
//
// SavingsOpportunityUSD sign convention: positive means excess spend
// recoverable by reducing the pump rate; negative means under-dosing,
// a corrosion-risk cost placeholder. Consumers sum only positive
// entries as cumulative savings opportunity.
type OptimizationResult struct {
	Timestamp             int64      `json:"timestamp"`
	RecommendedRateGPD    float64    `json:"recommended_rate_gpd"`
	ActualRateGPD         float64    `json:"actual_rate_gpd"`
	SavingsOpportunityUSD float64    `json:"savings_opportunity_usd"`
	StatusFlag            StatusFlag `json:"status_flag"`

	// Display supplements.
	WaterBPD   float64 `json:"water_bpd"`
	CurrentPPM float64 `json:"current_ppm"`
	TargetPPM  int     `json:"target_ppm"`
}

// Rounded returns a copy with display precision applied: rates to 3
// decimals, dollars and water volume to 2, ppm to 1.
func (r OptimizationResult) Rounded() OptimizationResult {
	r.RecommendedRateGPD = roundTo(r.RecommendedRateGPD, 3)
	r.ActualRateGPD = roundTo(r.ActualRateGPD, 3)
	r.SavingsOpportunityUSD = roundTo(r.SavingsOpportunityUSD, 2)
	r.WaterBPD = roundTo(r.WaterBPD, 2)
	r.CurrentPPM = roundTo(r.CurrentPPM, 1)
	return r
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// WellResult pairs a result with its well for the publisher.
type WellResult struct {
	WellID string
	Result OptimizationResult
}
