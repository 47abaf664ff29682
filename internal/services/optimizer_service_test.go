package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chemsaver-backend/internal/models"
	"chemsaver-backend/internal/settings"
)

// fakeResultStore records persistence calls in memory.
type fakeResultStore struct {
	samples    []models.ProductionSample
	results    []models.OptimizationResult
	suppressed []models.StatusFlag
	settings   map[string]*models.WellSettings

	settingsFetches int

	// Injected failures
	settingsErr error
	resultErr   error
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{settings: make(map[string]*models.WellSettings)}
}

func (f *fakeResultStore) SaveSample(_ context.Context, _ string, sample models.ProductionSample) error {
	f.samples = append(f.samples, sample)
	return nil
}

func (f *fakeResultStore) SaveResult(_ context.Context, _ string, result models.OptimizationResult) error {
	if f.resultErr != nil {
		return f.resultErr
	}
	f.results = append(f.results, result)
	return nil
}

func (f *fakeResultStore) SaveSuppressedTick(_ context.Context, _ string, _ int64, flag models.StatusFlag, _ string) error {
	f.suppressed = append(f.suppressed, flag)
	return nil
}

func (f *fakeResultStore) GetWellSettings(_ context.Context, wellID string) (*models.WellSettings, error) {
	f.settingsFetches++
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	return f.settings[wellID], nil
}

// fakeStateStore keeps stream state in a map.
type fakeStateStore struct {
	states map[string]*models.StreamState
	saves  int
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]*models.StreamState)}
}

func (f *fakeStateStore) Load(_ context.Context, wellID string) (*models.StreamState, error) {
	if s, ok := f.states[wellID]; ok {
		return s, nil
	}
	return models.NewStreamState(), nil
}

func (f *fakeStateStore) Save(_ context.Context, wellID string, state *models.StreamState) error {
	f.states[wellID] = state
	f.saves++
	return nil
}

func fptr(v float64) *float64 { return &v }

func ingestRecord(wellID string, ts int64, gross, waterCut, injection float64) *models.IngestRecord {
	return &models.IngestRecord{
		WellID: wellID,
		Record: models.ProductionRecord{
			Timestamp:            ts,
			GrossFluidRate:       fptr(gross),
			WaterCut:             fptr(waterCut),
			CurrentInjectionRate: fptr(injection),
		},
	}
}

func newTestService(db ResultStore, states StateStore) *OptimizerService {
	return NewOptimizerService(db, states, DefaultOptimizerServiceConfig())
}

func TestProcessRecordPersistsResult(t *testing.T) {
	db := newFakeResultStore()
	states := newFakeStateStore()
	svc := newTestService(db, states)

	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000000, 1000, 50, 5.0))

	require.Len(t, db.results, 1)
	res := db.results[0]
	assert.Equal(t, models.StatusOverDosing, res.StatusFlag)
	assert.InDelta(t, 4.196, res.RecommendedRateGPD, 0.001)
	assert.InDelta(t, 5.0, res.ActualRateGPD, 1e-9)

	require.Len(t, db.samples, 1)
	assert.Equal(t, 1000.0, db.samples[0].GrossFluidRate)

	// State persisted with the new baseline
	st := states.states["well-001"]
	require.NotNil(t, st)
	require.NotNil(t, st.LastAcceptedSample)
	assert.Equal(t, int64(1700000000), st.LastAcceptedSample.Timestamp)
	assert.Equal(t, int64(1700000000), st.LastEmissionTS)

	// Result forwarded for publishing
	select {
	case wr := <-svc.ResultChan:
		assert.Equal(t, "well-001", wr.WellID)
	default:
		t.Fatal("expected result on ResultChan")
	}
}

func TestProcessRecordInvalidPersistsSuppressedTick(t *testing.T) {
	db := newFakeResultStore()
	states := newFakeStateStore()
	svc := newTestService(db, states)

	svc.processRecord(context.Background(), &models.IngestRecord{
		WellID: "well-001",
		Record: models.ProductionRecord{Timestamp: 0},
	})

	assert.Empty(t, db.results)
	require.Len(t, db.suppressed, 1)
	assert.Equal(t, models.StatusError, db.suppressed[0])

	// State is still saved so attempt bookkeeping survives
	assert.Equal(t, 1, states.saves)
}

func TestProcessRecordUsesStoredSettings(t *testing.T) {
	db := newFakeResultStore()
	states := newFakeStateStore()
	svc := newTestService(db, states)

	stored := settings.Defaults()
	stored.TargetPPM = 400
	db.settings["well-001"] = &stored

	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000000, 1000, 50, 5.0))

	require.Len(t, db.results, 1)
	// Doubled target doubles the recommendation
	assert.InDelta(t, 8.393, db.results[0].RecommendedRateGPD, 0.001)
	assert.Equal(t, 400, db.results[0].TargetPPM)
}

func TestSettingsCacheAvoidsRepeatedFetches(t *testing.T) {
	db := newFakeResultStore()
	states := newFakeStateStore()
	svc := newTestService(db, states)

	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000000, 1000, 50, 5.0))
	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000030, 1000, 50, 5.0))

	assert.Equal(t, 1, db.settingsFetches)

	svc.InvalidateSettings("well-001")
	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000060, 1000, 50, 5.0))
	assert.Equal(t, 2, db.settingsFetches)
}

func TestSettingsFetchFailureIsNotCached(t *testing.T) {
	db := newFakeResultStore()
	states := newFakeStateStore()
	svc := newTestService(db, states)

	// While the settings lookup fails, each tick falls back to
	// defaults for that tick only and retries the store next time.
	db.settingsErr = errors.New("connection refused")
	stored := settings.Defaults()
	stored.TargetPPM = 400
	db.settings["well-001"] = &stored

	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000000, 1000, 50, 5.0))
	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000030, 1000, 50, 5.0))
	assert.Equal(t, 2, db.settingsFetches)

	require.Len(t, db.results, 2)
	assert.Equal(t, 200, db.results[0].TargetPPM)

	// Store recovers: the stored record takes effect immediately.
	db.settingsErr = nil
	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000060, 1000, 50, 5.0))
	require.Len(t, db.results, 3)
	assert.Equal(t, 400, db.results[2].TargetPPM)
}

func TestResultSaveFailureStillAdvancesState(t *testing.T) {
	db := newFakeResultStore()
	states := newFakeStateStore()
	svc := newTestService(db, states)

	db.resultErr = errors.New("insert failed")
	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000000, 1000, 50, 5.0))

	assert.Empty(t, db.results)

	// The tick happened: history and the emission clock advance so the
	// next tick's spike filter and staleness gate see it.
	assert.Equal(t, 1, states.saves)
	st := states.states["well-001"]
	require.NotNil(t, st)
	require.NotNil(t, st.LastAcceptedSample)
	assert.Equal(t, int64(1700000000), st.LastEmissionTS)

	// An unsaved result is not published either.
	select {
	case wr := <-svc.ResultChan:
		t.Fatalf("unexpected published result for %s", wr.WellID)
	default:
	}
}

func TestProcessRecordCarriesStateAcrossTicks(t *testing.T) {
	db := newFakeResultStore()
	states := newFakeStateStore()
	svc := newTestService(db, states)

	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000000, 1000, 50, 5.0))
	// Spike within the window: reuses the prior flow values
	svc.processRecord(context.Background(), ingestRecord("well-001", 1700000030, 7000, 50, 5.0))

	require.Len(t, db.results, 2)
	assert.InDelta(t, db.results[0].RecommendedRateGPD, db.results[1].RecommendedRateGPD, 1e-9)

	// Baseline still the original sample, not the spike
	st := states.states["well-001"]
	require.NotNil(t, st.LastAcceptedSample)
	assert.Equal(t, 1000.0, st.LastAcceptedSample.GrossFluidRate)
}
