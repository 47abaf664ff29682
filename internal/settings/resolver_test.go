package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chemsaver-backend/internal/models"
)

func TestResolve(t *testing.T) {
	t.Run("nil record yields defaults", func(t *testing.T) {
		s := Resolve(nil)
		assert.Equal(t, Defaults(), s)
	})

	t.Run("stored record passes through untouched", func(t *testing.T) {
		stored := Defaults()
		stored.TargetPPM = 350
		stored.CostPerGallon = 25
		assert.Equal(t, stored, Resolve(&stored))
	})

	t.Run("stored zero is kept, not treated as missing", func(t *testing.T) {
		stored := Defaults()
		stored.CostPerGallon = 0
		stored.MinPumpRate = 0
		s := Resolve(&stored)
		assert.Zero(t, s.CostPerGallon)
		assert.Zero(t, s.MinPumpRate)
	})

	t.Run("unit preference is normalized", func(t *testing.T) {
		stored := Defaults()
		stored.UnitPreference = "Liters"
		assert.Equal(t, models.UnitLiters, Resolve(&stored).UnitPreference)
	})

	t.Run("resolved defaults are valid", func(t *testing.T) {
		assert.Empty(t, Validate(Resolve(nil)))
	})
}

func iptr(v int) *int         { return &v }
func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func TestMerge(t *testing.T) {
	t.Run("nil update yields defaults", func(t *testing.T) {
		assert.Equal(t, Defaults(), Merge(nil))
	})

	t.Run("set fields win over defaults", func(t *testing.T) {
		s := Merge(&models.WellSettingsUpdate{
			TargetPPM:     iptr(350),
			CostPerGallon: fptr(25),
		})
		assert.Equal(t, 350, s.TargetPPM)
		assert.Equal(t, 25.0, s.CostPerGallon)
		// Absent fields fall back.
		assert.Equal(t, DefaultChemicalDensity, s.ChemicalDensity)
		assert.Equal(t, DefaultMinPumpRate, s.MinPumpRate)
		assert.Equal(t, models.UnitGallons, s.UnitPreference)
	})

	t.Run("explicit zero is kept and passes validation", func(t *testing.T) {
		// Zero cost and zero min pump rate are legal values inside
		// their bounds; only an absent field takes the default.
		s := Merge(&models.WellSettingsUpdate{
			CostPerGallon: fptr(0),
			MinPumpRate:   fptr(0),
		})
		assert.Zero(t, s.CostPerGallon)
		assert.Zero(t, s.MinPumpRate)
		assert.Empty(t, Validate(s))
	})

	t.Run("unit preference is normalized", func(t *testing.T) {
		s := Merge(&models.WellSettingsUpdate{UnitPreference: sptr("Liters")})
		assert.Equal(t, models.UnitLiters, s.UnitPreference)
	})
}

func TestValidate(t *testing.T) {
	t.Run("defaults pass", func(t *testing.T) {
		assert.Empty(t, Validate(Defaults()))
	})

	t.Run("pump envelope invariant", func(t *testing.T) {
		s := Defaults()
		s.MinPumpRate = 10
		s.MaxPumpRate = 10
		errs := Validate(s)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "min_pump_rate")
	})

	t.Run("field bounds", func(t *testing.T) {
		cases := map[string]models.WellSettings{}

		s := Defaults()
		s.TargetPPM = 0
		cases["target_ppm low"] = s

		s = Defaults()
		s.TargetPPM = 10001
		cases["target_ppm high"] = s

		s = Defaults()
		s.ChemicalDensity = 0.05
		cases["chemical_density low"] = s

		s = Defaults()
		s.ActiveIntensity = 0.5
		cases["active_intensity low"] = s

		s = Defaults()
		s.CostPerGallon = -1
		cases["cost_per_gallon negative"] = s

		s = Defaults()
		s.MaxPumpRate = 2000
		cases["max_pump_rate high"] = s

		s = Defaults()
		s.UnitPreference = "barrels"
		cases["unit_preference unknown"] = s

		for name, bad := range cases {
			t.Run(name, func(t *testing.T) {
				assert.NotEmpty(t, Validate(bad))
			})
		}
	})

	t.Run("collects every violation", func(t *testing.T) {
		s := Defaults()
		s.TargetPPM = 0
		s.ActiveIntensity = 0
		s.MinPumpRate = 60 // above max of 50
		errs := Validate(s)
		assert.GreaterOrEqual(t, len(errs), 3)
	})
}

func TestSettingsRoundTrip(t *testing.T) {
	// Saved then reloaded settings must be bit-identical for every
	// numeric field; JSON is the wire format used by both stores.
	s := models.WellSettings{
		TargetPPM:       417,
		ChemicalDensity: 1.13,
		ActiveIntensity: 37.5,
		CostPerGallon:   12.75,
		MinPumpRate:     0.7,
		MaxPumpRate:     48.25,
		UnitPreference:  models.UnitLiters,
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var back models.WellSettings
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s, back)
}
