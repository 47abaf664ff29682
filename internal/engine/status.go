package engine

import "chemsaver-backend/internal/models"

// DefaultTolerancePercent is the band around the recommendation within
// which the actual rate counts as optimal.
const DefaultTolerancePercent = 10.0

// ClassifyStatus decides the dosing status from the two rates and a
// tolerance band (percent). Stateless. PUMP_OFF takes priority over
// the rate comparison: a well that is not producing needs no dosing
// regardless of what the pump reports. ERROR and NO_DATA are never
// returned here; the orchestrator emits those.
func ClassifyStatus(sample models.ProductionSample, recommended, tolerancePercent float64) models.StatusFlag {
	if !sample.PumpOn() {
		return models.StatusPumpOff
	}

	tol := tolerancePercent / 100
	switch {
	case sample.CurrentInjectionRate > recommended*(1+tol):
		return models.StatusOverDosing
	case sample.CurrentInjectionRate < recommended*(1-tol):
		return models.StatusUnderDosing
	default:
		return models.StatusOptimal
	}
}
