package factors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"carbon-track/models"
)

func TestDefaultFactors(t *testing.T) {
	table := Default()

	assert.Equal(t, 0.4, table.Factor(models.CategoryElectricity))
	assert.Equal(t, 2.31, table.Factor(models.CategoryFuel))
	assert.Equal(t, 0.57, table.Factor(models.CategoryWaste))
	assert.Equal(t, DefaultVersion, table.Version())
}

func TestEmissionsIsUsageTimesFactor(t *testing.T) {
	table := Default()
	usages := []float64{0, 0.01, 1, 50, 150, 1200, 98765.4321}

	for _, c := range models.Categories {
		for _, u := range usages {
			assert.Equal(t, u*table.Factor(c), table.Emissions(c, u), "%s %v", c, u)
		}
	}
	assert.InDelta(t, 480, table.Emissions(models.CategoryElectricity, 1200), 1e-9)
	assert.InDelta(t, 346.5, table.Emissions(models.CategoryFuel, 150), 1e-9)
	assert.InDelta(t, 28.5, table.Emissions(models.CategoryWaste, 50), 1e-9)
}

func TestNewRejectsIncompleteTables(t *testing.T) {
	_, err := New("v2", map[string]float64{"electricity": 0.3, "fuel": 2.0})
	assert.ErrorIs(t, err, ErrMissingFactor)

	_, err = New("v2", map[string]float64{"electricity": 0.3, "fuel": 2.0, "waste": 0})
	assert.ErrorIs(t, err, ErrInvalidFactor)

	_, err = New("v2", map[string]float64{"electricity": 0.3, "fuel": 2.0, "waste": 0.5, "water": 1})
	assert.ErrorIs(t, err, ErrUnknownFactor)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: grid-2025
factors:
  electricity: 0.23
  fuel: 2.4
  waste: 0.5
`), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "grid-2025", table.Version())
	assert.Equal(t, 0.23, table.Factor(models.CategoryElectricity))
}

func TestYAMLRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(Default())
	require.NoError(t, err)

	table, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, Default().Entries(), table.Entries())
}

func TestEntriesOrder(t *testing.T) {
	entries := Default().Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, models.CategoryElectricity, entries[0].Category)
	assert.Equal(t, "kWh", entries[0].Unit)
	assert.Equal(t, models.CategoryFuel, entries[1].Category)
	assert.Equal(t, models.CategoryWaste, entries[2].Category)
}
