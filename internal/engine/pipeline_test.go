package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chemsaver-backend/internal/models"
	"chemsaver-backend/internal/settings"
)

func record(ts int64, gross, waterCut, injection float64) models.ProductionRecord {
	return models.ProductionRecord{
		Timestamp:            ts,
		GrossFluidRate:       fptr(gross),
		WaterCut:             fptr(waterCut),
		CurrentInjectionRate: fptr(injection),
	}
}

func TestPipelineProcess(t *testing.T) {
	s := settings.Defaults()

	t.Run("reference over-dosing well", func(t *testing.T) {
		p := New(Config{})
		state := models.NewStreamState()

		out := p.Process(record(1000, 1000, 50, 5.0), s, state)
		require.True(t, out.Emitted())
		require.NoError(t, out.Err)

		r := out.Result
		assert.InDelta(t, 4.196, r.RecommendedRateGPD, 0.001)
		assert.Equal(t, 5.0, r.ActualRateGPD)
		assert.InDelta(t, 8.04, r.SavingsOpportunityUSD, 0.01)
		assert.Equal(t, models.StatusOverDosing, r.StatusFlag)
		assert.Equal(t, 500.0, r.WaterBPD)
		assert.Equal(t, 200, r.TargetPPM)

		// State advanced.
		require.NotNil(t, state.LastAcceptedSample)
		assert.Equal(t, 1000.0, state.LastAcceptedSample.GrossFluidRate)
		assert.Equal(t, 50.0, *state.LastAcceptedWaterCut)
		assert.Equal(t, int64(1000), state.LastEmissionTS)
	})

	t.Run("pump off regardless of injection rate", func(t *testing.T) {
		p := New(Config{})
		out := p.Process(record(1000, 0, 50, 7.0), s, models.NewStreamState())
		require.True(t, out.Emitted())
		assert.Equal(t, models.StatusPumpOff, out.Result.StatusFlag)
		assert.Zero(t, out.Result.RecommendedRateGPD)
		// Full spend counts as waste while the well is off.
		assert.InDelta(t, 70.0, out.Result.SavingsOpportunityUSD, 0.001)
	})

	t.Run("recommendation clamps to pump envelope", func(t *testing.T) {
		p := New(Config{})
		// Tiny water volume drives the raw recommendation below min.
		out := p.Process(record(1000, 10, 5, 0.5), s, models.NewStreamState())
		require.True(t, out.Emitted())
		assert.Equal(t, s.MinPumpRate, out.Result.RecommendedRateGPD)
	})

	t.Run("spike substitutes last accepted values", func(t *testing.T) {
		p := New(Config{})
		state := models.NewStreamState()

		first := p.Process(record(1000, 100, 50, 1.0), s, state)
		require.True(t, first.Emitted())

		spiked := p.Process(record(1030, 700, 80, 1.0), s, state)
		require.True(t, spiked.Emitted())
		assert.NotEmpty(t, spiked.Warnings)
		// Computed from the prior 100 BPD / 50% values, new timestamp.
		assert.Equal(t, int64(1030), spiked.Result.Timestamp)
		assert.Equal(t, 50.0, spiked.Result.WaterBPD)

		// The spiked sample is not the new baseline.
		assert.Equal(t, 100.0, state.LastAcceptedSample.GrossFluidRate)
		assert.Equal(t, int64(1030), state.LastEmissionTS)
	})

	t.Run("rejected record within window reports validation error", func(t *testing.T) {
		p := New(Config{})
		state := models.NewStreamState()
		state.LastEmissionTS = 1000

		rec := record(1100, -5, 50, 1.0)
		out := p.Process(rec, s, state)
		assert.False(t, out.Emitted())
		assert.Equal(t, models.StatusError, out.Status)
		assert.True(t, errors.Is(out.Err, ErrValidation))
		// Attempt recorded, emission clock untouched.
		assert.Equal(t, int64(1100), state.LastAttemptTS)
		assert.Equal(t, int64(1000), state.LastEmissionTS)
	})

	t.Run("stale stream suppresses untrustworthy ticks", func(t *testing.T) {
		p := New(Config{})
		state := models.NewStreamState()

		first := p.Process(record(1000, 100, 50, 1.0), s, state)
		require.True(t, first.Emitted())

		// 301 seconds later a rejected record arrives: suppressed.
		bad := record(1301, -5, 50, 1.0)
		out := p.Process(bad, s, state)
		assert.False(t, out.Emitted())
		assert.Equal(t, models.StatusNoData, out.Status)
		assert.True(t, errors.Is(out.Err, ErrStaleness))
		assert.Equal(t, int64(1000), state.LastEmissionTS)

		// A fully valid sample at 1305 is emitted normally; the gap
		// alone never suppresses.
		ok := p.Process(record(1305, 110, 50, 1.0), s, state)
		require.True(t, ok.Emitted())
		assert.Equal(t, int64(1305), state.LastEmissionTS)
	})

	t.Run("spike on a stale stream suppresses", func(t *testing.T) {
		p := New(Config{})
		state := models.NewStreamState()

		require.True(t, p.Process(record(1000, 100, 50, 1.0), s, state).Emitted())

		// Move the accepted baseline close to the spike without
		// advancing past the staleness window.
		state.LastAcceptedSample.Timestamp = 1301 - 30

		out := p.Process(record(1301, 900, 50, 1.0), s, state)
		assert.False(t, out.Emitted())
		assert.Equal(t, models.StatusNoData, out.Status)
		assert.True(t, errors.Is(out.Err, ErrStaleness))
	})

	t.Run("configuration error blocks emission", func(t *testing.T) {
		p := New(Config{})
		bad := s
		bad.ActiveIntensity = 0
		state := models.NewStreamState()

		out := p.Process(record(1000, 1000, 50, 5.0), bad, state)
		assert.False(t, out.Emitted())
		assert.Equal(t, models.StatusError, out.Status)
		assert.True(t, errors.Is(out.Err, ErrConfiguration))
		assert.Nil(t, state.LastAcceptedSample)
	})

	t.Run("water cut forward fill across records", func(t *testing.T) {
		p := New(Config{})
		state := models.NewStreamState()

		require.True(t, p.Process(record(1000, 1000, 60, 5.0), s, state).Emitted())

		rec := record(1010, 1000, 0, 5.0)
		rec.WaterCut = fptr(250) // out of range
		out := p.Process(rec, s, state)
		require.True(t, out.Emitted())
		assert.Equal(t, 600.0, out.Result.WaterBPD)
		// The substituted value does not overwrite history.
		assert.Equal(t, 60.0, *state.LastAcceptedWaterCut)
	})

	t.Run("zero under-dosing convention", func(t *testing.T) {
		p := New(Config{ZeroUnderDosingSavings: true})
		out := p.Process(record(1000, 1000, 50, 2.0), s, models.NewStreamState())
		require.True(t, out.Emitted())
		assert.Equal(t, models.StatusUnderDosing, out.Result.StatusFlag)
		assert.Zero(t, out.Result.SavingsOpportunityUSD)
	})
}
