package models

// Unit preference values for display conversion. All internal
// computation and storage is in gallons per day; liters are a
// presentation concern for the consumer.
const (
	UnitGallons = "gallons"
	UnitLiters  = "liters"
)

// Display conversion factors, gallons <-> liters.
const (
	LitersPerGallon = 3.78541
	GallonsPerLiter = 0.264172
)

// WellSettings is the per-well configuration record. Created with
// defaults on first access, updated wholesale on save, never partially
// deleted.
type WellSettings struct {
	TargetPPM       int     `json:"target_ppm"`
	ChemicalDensity float64 `json:"chemical_density"` // kg/L, relative to water
	ActiveIntensity float64 `json:"active_intensity"` // percent active ingredient
	CostPerGallon   float64 `json:"cost_per_gallon"`  // USD
	MinPumpRate     float64 `json:"min_pump_rate"`    // GPD
	MaxPumpRate     float64 `json:"max_pump_rate"`    // GPD
	UnitPreference  string  `json:"unit_preference"`
}

// WellSettingsUpdate is a partial settings record as posted by a
// client. Pointer fields distinguish an absent field from a legal zero
// (cost_per_gallon and min_pump_rate both admit 0), the same way
// ProductionRecord does for telemetry.
type WellSettingsUpdate struct {
	TargetPPM       *int     `json:"target_ppm"`
	ChemicalDensity *float64 `json:"chemical_density"`
	ActiveIntensity *float64 `json:"active_intensity"`
	CostPerGallon   *float64 `json:"cost_per_gallon"`
	MinPumpRate     *float64 `json:"min_pump_rate"`
	MaxPumpRate     *float64 `json:"max_pump_rate"`
	UnitPreference  *string  `json:"unit_preference"`
}
