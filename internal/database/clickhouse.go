package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"chemsaver-backend/internal/models"
)

type ClickHouseDB struct {
	conn driver.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(addr, database, username, password string) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Printf("Connected to ClickHouse at %s", addr)

	db := &ClickHouseDB{conn: conn}

	// Initialize schema
	if err := db.InitSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// InitSchema creates the necessary tables if they don't exist
func (db *ClickHouseDB) InitSchema() error {
	ctx := context.Background()

	for _, tableSQL := range AllTables() {
		if err := db.conn.Exec(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// SaveSample stores a validated production sample for audit
func (db *ClickHouseDB) SaveSample(ctx context.Context, wellID string, sample models.ProductionSample) error {
	query := `
		INSERT INTO production_samples (timestamp, well_id, gross_fluid_rate, water_cut, current_injection_rate)
		VALUES (?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		time.Unix(sample.Timestamp, 0),
		wellID,
		sample.GrossFluidRate,
		sample.WaterCut,
		sample.CurrentInjectionRate,
	)

	if err != nil {
		return fmt.Errorf("failed to insert production sample: %w", err)
	}

	return nil
}

// SaveResult stores an optimization result
func (db *ClickHouseDB) SaveResult(ctx context.Context, wellID string, result models.OptimizationResult) error {
	r := result.Rounded()

	query := `
		INSERT INTO optimization_results (timestamp, well_id, record_id, recommended_rate_gpd, actual_rate_gpd, savings_opportunity_usd, status_flag, water_bpd, current_ppm, target_ppm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		time.Unix(r.Timestamp, 0),
		wellID,
		uuid.NewString(),
		r.RecommendedRateGPD,
		r.ActualRateGPD,
		r.SavingsOpportunityUSD,
		string(r.StatusFlag),
		r.WaterBPD,
		r.CurrentPPM,
		int32(r.TargetPPM),
	)

	if err != nil {
		return fmt.Errorf("failed to insert optimization result: %w", err)
	}

	return nil
}

// SaveSuppressedTick records a tick for which emission was suppressed,
// so audit consumers can tell a suppressed tick from one never computed
func (db *ClickHouseDB) SaveSuppressedTick(ctx context.Context, wellID string, ts int64, flag models.StatusFlag, reason string) error {
	query := `
		INSERT INTO suppressed_ticks (timestamp, well_id, status_flag, reason)
		VALUES (?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		time.Unix(ts, 0),
		wellID,
		string(flag),
		reason,
	)

	if err != nil {
		return fmt.Errorf("failed to insert suppressed tick: %w", err)
	}

	return nil
}

// SaveWellSettings stores a wholesale settings update for a well
func (db *ClickHouseDB) SaveWellSettings(ctx context.Context, wellID string, s models.WellSettings) error {
	query := `
		INSERT INTO well_settings (well_id, target_ppm, chemical_density, active_intensity, cost_per_gallon, min_pump_rate, max_pump_rate, unit_preference, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		wellID,
		int32(s.TargetPPM),
		s.ChemicalDensity,
		s.ActiveIntensity,
		s.CostPerGallon,
		s.MinPumpRate,
		s.MaxPumpRate,
		s.UnitPreference,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert well settings: %w", err)
	}

	log.Printf("Saved settings for well %s", wellID)
	return nil
}

// GetWellSettings returns the stored settings for a well, or nil when
// the well has none yet
func (db *ClickHouseDB) GetWellSettings(ctx context.Context, wellID string) (*models.WellSettings, error) {
	query := `
		SELECT target_ppm, chemical_density, active_intensity, cost_per_gallon, min_pump_rate, max_pump_rate, unit_preference
		FROM well_settings
		WHERE well_id = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var (
		targetPPM int32
		s         models.WellSettings
	)

	row := db.conn.QueryRow(ctx, query, wellID)
	err := row.Scan(
		&targetPPM,
		&s.ChemicalDensity,
		&s.ActiveIntensity,
		&s.CostPerGallon,
		&s.MinPumpRate,
		&s.MaxPumpRate,
		&s.UnitPreference,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// No settings stored yet; callers resolve defaults.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query well settings: %w", err)
	}

	s.TargetPPM = int(targetPPM)
	return &s, nil
}

// GetRecentResults returns the newest results for a well, most recent first
func (db *ClickHouseDB) GetRecentResults(ctx context.Context, wellID string, limit int) ([]models.OptimizationResult, error) {
	query := `
		SELECT timestamp, recommended_rate_gpd, actual_rate_gpd, savings_opportunity_usd, status_flag, water_bpd, current_ppm, target_ppm
		FROM optimization_results
		WHERE well_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := db.conn.Query(ctx, query, wellID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.OptimizationResult
	for rows.Next() {
		var (
			ts        time.Time
			flag      string
			targetPPM int32
			r         models.OptimizationResult
		)
		if err := rows.Scan(
			&ts,
			&r.RecommendedRateGPD,
			&r.ActualRateGPD,
			&r.SavingsOpportunityUSD,
			&flag,
			&r.WaterBPD,
			&r.CurrentPPM,
			&targetPPM,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		r.Timestamp = ts.Unix()
		r.StatusFlag = models.StatusFlag(flag)
		r.TargetPPM = int(targetPPM)
		results = append(results, r)
	}

	return results, nil
}

// GetSavingsSummary sums positive savings entries for a well since the
// given time: the cumulative savings opportunity figure consumers show
func (db *ClickHouseDB) GetSavingsSummary(ctx context.Context, wellID string, since time.Time) (float64, error) {
	query := `
		SELECT sumIf(savings_opportunity_usd, savings_opportunity_usd > 0)
		FROM optimization_results
		WHERE well_id = ? AND timestamp >= ?
	`

	var total float64
	row := db.conn.QueryRow(ctx, query, wellID, since)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to compute savings summary: %w", err)
	}

	return total, nil
}

// Close closes the ClickHouse connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		if err := db.conn.Close(); err != nil {
			return fmt.Errorf("failed to close ClickHouse connection: %w", err)
		}
		log.Println("ClickHouse connection closed")
	}
	return nil
}
