package engine

import (
	"fmt"

	"chemsaver-backend/internal/models"
)

// Physical conversion constants.
const (
	// WaterLbsPerBarrel converts produced water barrels to pounds,
	// treating produced water as fresh-water-equivalent density.
	WaterLbsPerBarrel = 350.0

	// WaterLbsPerGallon is the mass of a gallon of unit-density fluid;
	// chemical_density is specified relative to water.
	WaterLbsPerGallon = 8.34

	// PPMDivisor converts parts-per-million to a mass fraction.
	PPMDivisor = 1_000_000.0
)

// WaterVolumeBPD returns the produced water volume in barrels per day.
func WaterVolumeBPD(sample models.ProductionSample) float64 {
	return sample.GrossFluidRate * (sample.WaterCut / 100)
}

// ComputeDosage converts a validated sample and settings into the
// unconstrained recommended chemical injection rate in gallons per day.
// Deterministic arithmetic; the only error path is a settings record
// the math cannot work with. Settings validation should prevent those
// values, but the calculator defends independently.
func ComputeDosage(sample models.ProductionSample, s models.WellSettings) (float64, error) {
	if s.ActiveIntensity <= 0 {
		return 0, fmt.Errorf("%w: active_intensity %g must be positive", ErrConfiguration, s.ActiveIntensity)
	}
	if s.ChemicalDensity <= 0 {
		return 0, fmt.Errorf("%w: chemical_density %g must be positive", ErrConfiguration, s.ChemicalDensity)
	}

	waterBPD := WaterVolumeBPD(sample)
	if waterBPD <= 0 {
		return 0, nil
	}

	waterMassLbs := waterBPD * WaterLbsPerBarrel
	pureChemicalMassLbs := waterMassLbs * (float64(s.TargetPPM) / PPMDivisor)
	grossChemicalMassLbs := pureChemicalMassLbs / (s.ActiveIntensity / 100)

	return grossChemicalMassLbs / (s.ChemicalDensity * WaterLbsPerGallon), nil
}

// Clamp enforces the pump-rate envelope on a recommendation. Applied to
// the recommendation only; the actual rate is telemetry and passes
// through unmodified. Idempotent.
func Clamp(rate float64, s models.WellSettings) float64 {
	if rate > s.MaxPumpRate {
		return s.MaxPumpRate
	}
	if rate < s.MinPumpRate {
		return s.MinPumpRate
	}
	return rate
}

// CurrentPPM back-calculates the concentration implied by the actual
// injection rate, the reverse of ComputeDosage. Display supplement,
// not an engine decision input.
func CurrentPPM(sample models.ProductionSample, s models.WellSettings) float64 {
	waterBPD := WaterVolumeBPD(sample)
	if waterBPD <= 0 || sample.CurrentInjectionRate <= 0 {
		return 0
	}
	if s.ActiveIntensity <= 0 || s.ChemicalDensity <= 0 {
		return 0
	}

	grossMassLbs := sample.CurrentInjectionRate * s.ChemicalDensity * WaterLbsPerGallon
	pureMassLbs := grossMassLbs * (s.ActiveIntensity / 100)
	waterMassLbs := waterBPD * WaterLbsPerBarrel

	return pureMassLbs / waterMassLbs * PPMDivisor
}
