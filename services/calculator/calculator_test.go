package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-track/models"
	"carbon-track/services/factors"
)

func fixedNow() time.Time {
	return time.Date(2024, time.August, 1, 15, 30, 0, 0, time.UTC)
}

func newCalc() *Calculator {
	return New(factors.Default(), fixedNow)
}

func TestCalculate(t *testing.T) {
	res, err := newCalc().Calculate(Input{
		Date: "2024-06-15", Category: "electricity", Usage: 1200, Description: "Office electricity",
	})
	require.NoError(t, err)
	assert.InDelta(t, 480, res.Emissions, 1e-9)
	assert.Equal(t, 0.4, res.Factor)
	assert.Equal(t, "kWh", res.Unit)
}

func TestCalculateUnits(t *testing.T) {
	c := newCalc()
	for _, tc := range []struct {
		category string
		unit     string
	}{
		{"electricity", "kWh"},
		{"fuel", "liters"},
		{"waste", "kg"},
	} {
		t.Run(tc.category, func(t *testing.T) {
			res, err := c.Calculate(Input{Date: "2024-06-15", Category: tc.category, Usage: 1, Description: "abc"})
			require.NoError(t, err)
			assert.Equal(t, tc.unit, res.Unit)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Input{Date: "2024-06-15", Category: "fuel", Usage: 10, Description: "Van"}

	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing date", func(in *Input) { in.Date = "" }, "date"},
		{"bad date", func(in *Input) { in.Date = "15/06/2024" }, "date"},
		{"future date", func(in *Input) { in.Date = "2024-08-02" }, "date"},
		{"before 1900", func(in *Input) { in.Date = "1899-12-31" }, "date"},
		{"unknown category", func(in *Input) { in.Category = "water" }, "category"},
		{"zero usage", func(in *Input) { in.Usage = 0 }, "usage"},
		{"negative usage", func(in *Input) { in.Usage = -5 }, "usage"},
		{"short description", func(in *Input) { in.Description = " ab " }, "description"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			err := newCalc().Validate(in)

			var verr models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, []string{tc.field}, verr.Names())
		})
	}
}

func TestValidateAcceptsToday(t *testing.T) {
	err := newCalc().Validate(Input{Date: "2024-08-01", Category: "waste", Usage: 0.01, Description: "Bins"})
	assert.NoError(t, err)
}

func TestValidateReportsEveryField(t *testing.T) {
	err := newCalc().Validate(Input{})

	var verr models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"category", "date", "description", "usage"}, verr.Names())
}

func TestRecordUsesTableFactor(t *testing.T) {
	table, err := factors.New("test", map[string]float64{"electricity": 1, "fuel": 2, "waste": 3})
	require.NoError(t, err)

	rec, res, err := New(table, fixedNow).Record(Input{
		Date: "2024-06-15", Category: "waste", Usage: 10, Description: "  Bins  ",
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.Emissions)
	assert.Equal(t, models.NewRecord{
		Date: "2024-06-15", Category: models.CategoryWaste, Description: "Bins", Usage: 10, Emissions: 30,
	}, rec)
}
