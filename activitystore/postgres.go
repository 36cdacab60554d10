package activitystore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	fitapp "github.com/juan-esteban-berger/fit-app"
)

// Querier is the subset of *pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const postgresActivitiesQuery = `SELECT id, doc
FROM fitness.activities
WHERE doc->'session_mesgs'->0->>'start_time' >= $1
  AND doc->'session_mesgs'->0->>'start_time' < $2
ORDER BY doc->'session_mesgs'->0->>'start_time'`

// PostgresSource reads documents stored as JSONB in fitness.activities(id, doc).
type PostgresSource struct {
	db Querier
}

// NewPostgresSource reads through db, usually a *pgxpool.Pool.
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// Activities implements Source. Rows whose doc does not decode are returned
// carrying the decode error so the pipeline skips only them.
func (s *PostgresSource) Activities(ctx context.Context, w fitapp.TimeWindow) ([]fitapp.Document, error) {
	if w.Empty() {
		return nil, nil
	}
	start, end := w.QueryBounds()
	rows, err := s.db.Query(ctx, postgresActivitiesQuery, start, end)
	if err != nil {
		return nil, fmt.Errorf("query fitness.activities: %w", err)
	}
	defer rows.Close()

	var out []fitapp.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan fitness.activities: %w", err)
		}
		out = append(out, fitapp.DecodeStored(id, raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read fitness.activities: %w", err)
	}
	return out, nil
}
