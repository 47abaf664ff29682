package models

// ProductionRecord is a raw telemetry record as it arrives from the
// streaming source (MQTT payload or API request body). Pointer fields
// distinguish missing values from explicit zeros; the validator decides
// what each absence means.
type ProductionRecord struct {
	Timestamp            int64    `json:"timestamp"`              // unix seconds
	GrossFluidRate       *float64 `json:"gross_fluid_rate"`       // BPD
	WaterCut             *float64 `json:"water_cut"`              // percent 0-100
	CurrentInjectionRate *float64 `json:"current_injection_rate"` // GPD
}

// ProductionSample is a validated record with all substitutions applied.
// Every field carries a concrete value.
type ProductionSample struct {
	Timestamp            int64   `json:"timestamp"`
	GrossFluidRate       float64 `json:"gross_fluid_rate"`
	WaterCut             float64 `json:"water_cut"`
	CurrentInjectionRate float64 `json:"current_injection_rate"`
}

// PumpOn reports whether the well is producing. Derived from flow rate,
// same as the upstream telemetry source does.
func (s ProductionSample) PumpOn() bool {
	return s.GrossFluidRate > 0
}

// StreamState is the per-well history carried between pipeline
// invocations. It is the only component with memory: the calculator,
// clamp, classifier and financial evaluator are pure functions.
// Serialized to JSON for the external state store.
type StreamState struct {
	LastAcceptedSample   *ProductionSample `json:"last_accepted_sample,omitempty"`
	LastAcceptedWaterCut *float64          `json:"last_accepted_water_cut,omitempty"`
	LastEmissionTS       int64             `json:"last_emission_timestamp"`
	LastAttemptTS        int64             `json:"last_attempt_timestamp"`
}

// NewStreamState returns fresh state for a well with no history.
func NewStreamState() *StreamState {
	return &StreamState{}
}

// IngestRecord pairs a raw record with the well it was reported for.
// Produced by the MQTT subscriber, consumed by the optimizer service.
type IngestRecord struct {
	WellID string
	Record ProductionRecord
}
