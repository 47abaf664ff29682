package database

// SQL schemas for all ClickHouse tables

const (
	// ProductionSamplesTableSQL creates the raw telemetry audit table
	ProductionSamplesTableSQL = `
		CREATE TABLE IF NOT EXISTS production_samples (
			timestamp DateTime64(3),
			well_id String,
			gross_fluid_rate Float64,
			water_cut Float64,
			current_injection_rate Float64
		) ENGINE = MergeTree()
		ORDER BY (well_id, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`

	// OptimizationResultsTableSQL creates the results table
	OptimizationResultsTableSQL = `
		CREATE TABLE IF NOT EXISTS optimization_results (
			timestamp DateTime64(3),
			well_id String,
			record_id String,
			recommended_rate_gpd Float64,
			actual_rate_gpd Float64,
			savings_opportunity_usd Float64,
			status_flag String,
			water_bpd Float64,
			current_ppm Float64,
			target_ppm Int32
		) ENGINE = MergeTree()
		ORDER BY (well_id, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`

	// SuppressedTicksTableSQL records ticks for which no result was
	// emitted, so audit consumers can tell a suppressed tick from one
	// that was never computed
	SuppressedTicksTableSQL = `
		CREATE TABLE IF NOT EXISTS suppressed_ticks (
			timestamp DateTime64(3),
			well_id String,
			status_flag String,
			reason String
		) ENGINE = MergeTree()
		ORDER BY (well_id, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`

	// WellSettingsTableSQL creates the per-well settings table; the
	// latest row per well wins on merge
	WellSettingsTableSQL = `
		CREATE TABLE IF NOT EXISTS well_settings (
			well_id String,
			target_ppm Int32,
			chemical_density Float64,
			active_intensity Float64,
			cost_per_gallon Float64,
			min_pump_rate Float64,
			max_pump_rate Float64,
			unit_preference String,
			updated_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY well_id
	`
)

// AllTables returns all table creation SQL statements
func AllTables() []string {
	return []string{
		ProductionSamplesTableSQL,
		OptimizationResultsTableSQL,
		SuppressedTicksTableSQL,
		WellSettingsTableSQL,
	}
}
