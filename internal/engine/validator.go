package engine

import (
	"fmt"

	"chemsaver-backend/internal/models"
)

// ValidationStatus classifies a raw record.
type ValidationStatus int

const (
	// Usable means the record passed every check as-is.
	Usable ValidationStatus = iota
	// Degraded means the record is usable after substitutions.
	Degraded
	// Rejected means the record cannot produce a sample.
	Rejected
)

func (s ValidationStatus) String() string {
	switch s {
	case Usable:
		return "USABLE"
	case Degraded:
		return "DEGRADED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// ValidationResult carries the classified record, the sample built
// from it (valid only when Status != Rejected), and any findings.
type ValidationResult struct {
	Status   ValidationStatus
	Sample   models.ProductionSample
	Errors   []string
	Warnings []string
}

// ValidateRecord checks a raw record for structural validity and builds
// a concrete sample from it. Pure: state is consulted for water-cut
// forward fill but never mutated here; the pipeline updates state based
// on the returned status.
func ValidateRecord(rec models.ProductionRecord, state *models.StreamState) ValidationResult {
	res := ValidationResult{Status: Usable}

	if rec.Timestamp <= 0 {
		res.Status = Rejected
		res.Errors = append(res.Errors, "missing timestamp")
		return res
	}
	res.Sample.Timestamp = rec.Timestamp

	switch {
	case rec.GrossFluidRate == nil:
		res.Status = Degraded
		res.Warnings = append(res.Warnings, "missing gross_fluid_rate, substituting 0")
	case *rec.GrossFluidRate < 0:
		res.Status = Rejected
		res.Errors = append(res.Errors, fmt.Sprintf("negative gross_fluid_rate %g", *rec.GrossFluidRate))
		return res
	default:
		res.Sample.GrossFluidRate = *rec.GrossFluidRate
	}

	switch {
	case rec.CurrentInjectionRate == nil:
		if res.Status == Usable {
			res.Status = Degraded
		}
		res.Warnings = append(res.Warnings, "missing current_injection_rate, substituting 0")
	case *rec.CurrentInjectionRate < 0:
		res.Status = Rejected
		res.Errors = append(res.Errors, fmt.Sprintf("negative current_injection_rate %g", *rec.CurrentInjectionRate))
		return res
	default:
		res.Sample.CurrentInjectionRate = *rec.CurrentInjectionRate
	}

	if rec.WaterCut == nil || *rec.WaterCut < 0 || *rec.WaterCut > 100 {
		if state == nil || state.LastAcceptedWaterCut == nil {
			res.Status = Rejected
			res.Errors = append(res.Errors, "invalid water_cut with no history to substitute")
			return res
		}
		res.Status = Degraded
		res.Sample.WaterCut = *state.LastAcceptedWaterCut
		res.Warnings = append(res.Warnings, fmt.Sprintf("invalid water_cut, substituting last valid %g", res.Sample.WaterCut))
	} else {
		res.Sample.WaterCut = *rec.WaterCut
	}

	return res
}
