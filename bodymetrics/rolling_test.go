package bodymetrics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func weightRows(values ...float64) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{Date: day(i), Lbs: fptr(v), CaloricIntake: fptr(v * 10)}
	}
	return rows
}

func TestRollingMinPeriods(t *testing.T) {
	rows := weightRows(180, 182, 181, 179, 183, 184, 178, 177, 185)
	frame, err := Rolling(rows, DefaultSpecs())
	require.NoError(t, err)

	lbs, ok := frame.Aggregate("lbs_median_10")
	require.True(t, ok)
	require.Len(t, lbs.Values, 9)
	assert.True(t, math.IsNaN(lbs.Values[0]))
	assert.True(t, math.IsNaN(lbs.Values[1]))
	assert.Equal(t, 181.0, lbs.Values[2])
	assert.Equal(t, 180.5, lbs.Values[3])

	intake, ok := frame.Aggregate("caloric_intake_mean_10")
	require.True(t, ok)
	assert.True(t, math.IsNaN(intake.Values[1]))
	assert.InDelta(t, 1810.0, intake.Values[2], 1e-9)

	// cardio_calories is never populated.
	cardio, ok := frame.Aggregate("cardio_calories_mean_10")
	require.True(t, ok)
	for _, v := range cardio.Values {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRollingUsesTrailingTenOnly(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = float64(i + 1)
	}
	frame, err := Rolling(weightRows(values...), []Spec{{Column: ColumnLbs, Window: 10, MinPeriods: 3, Statistic: Mean}})
	require.NoError(t, err)

	agg := frame.Aggregates[0]
	assert.InDelta(t, 5.5, agg.Values[9], 1e-12)  // mean(1..10)
	assert.InDelta(t, 6.5, agg.Values[10], 1e-12) // mean(2..11)
	assert.InDelta(t, 7.5, agg.Values[11], 1e-12) // mean(3..12)
}

func TestRollingNeverLooksAhead(t *testing.T) {
	base := weightRows(1, 2, 3, 4, 5)
	extended := weightRows(1, 2, 3, 4, 5, 1000, 2000)
	spec := []Spec{{Column: ColumnLbs, Window: 10, MinPeriods: 1, Statistic: Median}}

	a, err := Rolling(base, spec)
	require.NoError(t, err)
	b, err := Rolling(extended, spec)
	require.NoError(t, err)
	assert.Equal(t, a.Aggregates[0].Values, b.Aggregates[0].Values[:5])
}

func TestRollingSortsByDate(t *testing.T) {
	rows := weightRows(10, 20, 30, 40)
	shuffled := []Row{rows[3], rows[1], rows[0], rows[2]}
	spec := []Spec{{Column: ColumnLbs, Window: 2, MinPeriods: 1, Statistic: Mean}}

	want, err := Rolling(rows, spec)
	require.NoError(t, err)
	got, err := Rolling(shuffled, spec)
	require.NoError(t, err)

	assert.Equal(t, want.Aggregates[0].Values, got.Aggregates[0].Values)
	assert.Equal(t, day(0), got.Rows[0].Date)
	// input is left untouched
	assert.Equal(t, day(3), shuffled[0].Date)
}

func TestRollingSkipsMissingValues(t *testing.T) {
	rows := weightRows(100, 0, 104, 0, 108)
	rows[1].Lbs = nil
	rows[3].Lbs = nil
	frame, err := Rolling(rows, []Spec{{Column: ColumnLbs, Window: 4, MinPeriods: 3, Statistic: Median}})
	require.NoError(t, err)

	v := frame.Aggregates[0].Values
	assert.True(t, math.IsNaN(v[2]))
	assert.True(t, math.IsNaN(v[3]))
	// rows 1..4 hold only 104 and 108
	assert.True(t, math.IsNaN(v[4]))

	frame, err = Rolling(rows, []Spec{{Column: ColumnLbs, Window: 5, MinPeriods: 3, Statistic: Median}})
	require.NoError(t, err)
	assert.Equal(t, 104.0, frame.Aggregates[0].Values[4])
}

func TestRollingErrors(t *testing.T) {
	_, err := Rolling([]Row{{Lbs: fptr(1)}}, DefaultSpecs())
	require.ErrorIs(t, err, fitapp.ErrAggregation)

	for _, s := range []Spec{
		{Column: "heart_rate", Window: 10, MinPeriods: 3, Statistic: Mean},
		{Column: ColumnLbs, Window: 0, MinPeriods: 1, Statistic: Mean},
		{Column: ColumnLbs, Window: 3, MinPeriods: 4, Statistic: Mean},
		{Column: ColumnLbs, Window: 3, MinPeriods: 1, Statistic: "max"},
	} {
		_, err := Rolling(weightRows(1, 2, 3), []Spec{s})
		assert.ErrorIs(t, err, fitapp.ErrAggregation, s.Name())
	}
}

func TestAggregateJSONUsesNull(t *testing.T) {
	frame, err := Rolling(weightRows(1, 2, 3), []Spec{{Column: ColumnLbs, Window: 3, MinPeriods: 2, Statistic: Mean}})
	require.NoError(t, err)
	data, err := json.Marshal(frame.Aggregates[0])
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"lbs_mean_3","spec":{"column":"lbs","window":3,"min_periods":2,"statistic":"mean"},"values":[null,1.5,2]}`,
		string(data))
}
