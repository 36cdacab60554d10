package bodymetrics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool used by Store.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const bodyMetricsQuery = `SELECT date, lbs, caloric_intake, cardio_calories, run_kms, run_calories,
       run_type, bike_kms, bike_calories, bike_type
FROM fitness.weight
ORDER BY date`

const strengthQuery = `SELECT date, exercise, variation, reps
FROM fitness.strength
ORDER BY date`

// Store reads the body-metric and strength tables.
type Store struct {
	db Querier
}

// NewStore wraps an open pool or connection. The caller owns its lifecycle.
func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// BodyMetrics returns every fitness.weight row ordered by date.
func (s *Store) BodyMetrics(ctx context.Context) ([]Row, error) {
	rows, err := s.db.Query(ctx, bodyMetricsQuery)
	if err != nil {
		return nil, fmt.Errorf("query fitness.weight: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r                 Row
			date              time.Time
			runType, bikeType *string
		)
		if err := rows.Scan(
			&date, &r.Lbs, &r.CaloricIntake, &r.CardioCalories, &r.RunKms, &r.RunCalories,
			&runType, &r.BikeKms, &r.BikeCalories, &bikeType,
		); err != nil {
			return nil, fmt.Errorf("scan fitness.weight: %w", err)
		}
		r.Date = date
		r.RunType = stringOrEmpty(runType)
		r.BikeType = stringOrEmpty(bikeType)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read fitness.weight: %w", err)
	}
	return out, nil
}

// Strength returns every fitness.strength row ordered by date.
func (s *Store) Strength(ctx context.Context) ([]StrengthRow, error) {
	rows, err := s.db.Query(ctx, strengthQuery)
	if err != nil {
		return nil, fmt.Errorf("query fitness.strength: %w", err)
	}
	defer rows.Close()

	var out []StrengthRow
	for rows.Next() {
		var (
			r                   StrengthRow
			exercise, variation *string
		)
		if err := rows.Scan(&r.Date, &exercise, &variation, &r.Reps); err != nil {
			return nil, fmt.Errorf("scan fitness.strength: %w", err)
		}
		r.Exercise = stringOrEmpty(exercise)
		r.Variation = stringOrEmpty(variation)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read fitness.strength: %w", err)
	}
	return out, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
