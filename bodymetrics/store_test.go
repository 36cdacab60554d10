package bodymetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sptr(s string) *string { return &s }

func TestStoreBodyMetrics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var none *float64
	var noType *string
	mock.ExpectQuery("FROM fitness.weight").
		WillReturnRows(pgxmock.NewRows([]string{
			"date", "lbs", "caloric_intake", "cardio_calories", "run_kms", "run_calories",
			"run_type", "bike_kms", "bike_calories", "bike_type",
		}).
			AddRow(day(0), fptr(181.2), fptr(2100), fptr(350), fptr(5.1), fptr(320), sptr("easy"), none, none, noType).
			AddRow(day(1), fptr(180.8), none, none, none, none, noType, fptr(20), fptr(400), sptr("indoor")))

	rows, err := NewStore(mock).BodyMetrics(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, day(0), rows[0].Date)
	assert.Equal(t, 181.2, *rows[0].Lbs)
	assert.Equal(t, "easy", rows[0].RunType)
	assert.Nil(t, rows[0].BikeKms)
	assert.Equal(t, "", rows[0].BikeType)

	assert.Nil(t, rows[1].CaloricIntake)
	assert.Equal(t, "indoor", rows[1].BikeType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreBodyMetricsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM fitness.weight").WillReturnError(errors.New("connection refused"))
	_, err = NewStore(mock).BodyMetrics(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query fitness.weight")
}

func TestStoreStrength(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM fitness.strength").
		WillReturnRows(pgxmock.NewRows([]string{"date", "exercise", "variation", "reps"}).
			AddRow(day(0), sptr("pull ups"), sptr("wide"), fptr(12)).
			AddRow(day(0), sptr("push ups"), (*string)(nil), fptr(30)))

	rows, err := NewStore(mock).Strength(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "pull ups", rows[0].Exercise)
	assert.Equal(t, "wide", rows[0].Variation)
	assert.Equal(t, "", rows[1].Variation)
	assert.Equal(t, 30.0, *rows[1].Reps)
	assert.NoError(t, mock.ExpectationsWereMet())
}
