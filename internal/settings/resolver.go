package settings

import (
	"fmt"
	"strings"

	"chemsaver-backend/internal/models"
)

// Default well settings, applied when a well has no stored record or a
// stored record is missing fields.
const (
	DefaultTargetPPM       = 200
	DefaultChemicalDensity = 1.0   // kg/L
	DefaultActiveIntensity = 100.0 // percent
	DefaultCostPerGallon   = 10.0  // USD
	DefaultMinPumpRate     = 0.5   // GPD
	DefaultMaxPumpRate     = 50.0  // GPD
)

// Field bounds enforced on save.
const (
	MinTargetPPM       = 1
	MaxTargetPPM       = 10000
	MinChemicalDensity = 0.1
	MaxChemicalDensity = 5.0
	MinActiveIntensity = 1.0
	MaxActiveIntensity = 100.0
	MinCostPerGallon   = 0.0
	MaxCostPerGallon   = 1000.0
	MinPumpRateFloor   = 0.0
	MinPumpRateCeil    = 100.0
	MaxPumpRateFloor   = 0.1
	MaxPumpRateCeil    = 1000.0
)

// Defaults returns the complete default settings record.
func Defaults() models.WellSettings {
	return models.WellSettings{
		TargetPPM:       DefaultTargetPPM,
		ChemicalDensity: DefaultChemicalDensity,
		ActiveIntensity: DefaultActiveIntensity,
		CostPerGallon:   DefaultCostPerGallon,
		MinPumpRate:     DefaultMinPumpRate,
		MaxPumpRate:     DefaultMaxPumpRate,
		UnitPreference:  models.UnitGallons,
	}
}

// Resolve returns the effective settings for a well: the stored record
// when one exists, defaults otherwise. Stored records are saved
// wholesale and complete, so their values pass through untouched; a
// stored zero is a stored zero, not a missing field.
func Resolve(stored *models.WellSettings) models.WellSettings {
	if stored == nil {
		return Defaults()
	}
	out := *stored
	out.UnitPreference = strings.ToLower(out.UnitPreference)
	return out
}

// Merge builds a complete settings record from a partial update,
// filling absent fields from defaults. Only a nil field means "use the
// default"; an explicit zero is kept for validation to judge.
func Merge(upd *models.WellSettingsUpdate) models.WellSettings {
	out := Defaults()
	if upd == nil {
		return out
	}

	if upd.TargetPPM != nil {
		out.TargetPPM = *upd.TargetPPM
	}
	if upd.ChemicalDensity != nil {
		out.ChemicalDensity = *upd.ChemicalDensity
	}
	if upd.ActiveIntensity != nil {
		out.ActiveIntensity = *upd.ActiveIntensity
	}
	if upd.CostPerGallon != nil {
		out.CostPerGallon = *upd.CostPerGallon
	}
	if upd.MinPumpRate != nil {
		out.MinPumpRate = *upd.MinPumpRate
	}
	if upd.MaxPumpRate != nil {
		out.MaxPumpRate = *upd.MaxPumpRate
	}
	if upd.UnitPreference != nil {
		out.UnitPreference = strings.ToLower(*upd.UnitPreference)
	}
	return out
}

// Validate checks a settings record against field bounds and the pump
// envelope invariant. Returns all violations, not just the first.
func Validate(s models.WellSettings) []error {
	var errs []error

	if s.TargetPPM < MinTargetPPM || s.TargetPPM > MaxTargetPPM {
		errs = append(errs, fmt.Errorf("target_ppm %d outside [%d, %d]", s.TargetPPM, MinTargetPPM, MaxTargetPPM))
	}
	if s.ChemicalDensity < MinChemicalDensity || s.ChemicalDensity > MaxChemicalDensity {
		errs = append(errs, fmt.Errorf("chemical_density %g outside [%g, %g]", s.ChemicalDensity, MinChemicalDensity, MaxChemicalDensity))
	}
	if s.ActiveIntensity < MinActiveIntensity || s.ActiveIntensity > MaxActiveIntensity {
		errs = append(errs, fmt.Errorf("active_intensity %g outside [%g, %g]", s.ActiveIntensity, MinActiveIntensity, MaxActiveIntensity))
	}
	if s.CostPerGallon < MinCostPerGallon || s.CostPerGallon > MaxCostPerGallon {
		errs = append(errs, fmt.Errorf("cost_per_gallon %g outside [%g, %g]", s.CostPerGallon, MinCostPerGallon, MaxCostPerGallon))
	}
	if s.MinPumpRate < MinPumpRateFloor || s.MinPumpRate > MinPumpRateCeil {
		errs = append(errs, fmt.Errorf("min_pump_rate %g outside [%g, %g]", s.MinPumpRate, MinPumpRateFloor, MinPumpRateCeil))
	}
	if s.MaxPumpRate < MaxPumpRateFloor || s.MaxPumpRate > MaxPumpRateCeil {
		errs = append(errs, fmt.Errorf("max_pump_rate %g outside [%g, %g]", s.MaxPumpRate, MaxPumpRateFloor, MaxPumpRateCeil))
	}
	if s.MinPumpRate >= s.MaxPumpRate {
		errs = append(errs, fmt.Errorf("min_pump_rate %g must be below max_pump_rate %g", s.MinPumpRate, s.MaxPumpRate))
	}
	if s.UnitPreference != models.UnitGallons && s.UnitPreference != models.UnitLiters {
		errs = append(errs, fmt.Errorf("unit_preference %q must be %q or %q", s.UnitPreference, models.UnitGallons, models.UnitLiters))
	}

	return errs
}
