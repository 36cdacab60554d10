package activitystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	fitapp "github.com/juan-esteban-berger/fit-app"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS activities (
    id TEXT PRIMARY KEY,
    start_time TEXT NOT NULL, -- session_mesgs[0].start_time as stored
    doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS activities_start_time ON activities (start_time);`

// SQLiteSource is a local document store for decoder output.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Put stores doc, replacing any document with the same id. A document without
// an id is given a random one, which is returned.
func (s *SQLiteSource) Put(ctx context.Context, doc fitapp.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode activity %s: %w", doc.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO activities (id, start_time, doc) VALUES (?, ?, ?)`,
		doc.ID, doc.StartTime(), string(raw))
	if err != nil {
		return "", fmt.Errorf("insert activity %s: %w", doc.ID, err)
	}
	return doc.ID, nil
}

// Activities implements Source.
func (s *SQLiteSource) Activities(ctx context.Context, w fitapp.TimeWindow) ([]fitapp.Document, error) {
	if w.Empty() {
		return nil, nil
	}
	start, end := w.QueryBounds()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc FROM activities WHERE start_time >= ? AND start_time < ? ORDER BY start_time`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var out []fitapp.Document
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		doc := fitapp.DecodeStored(id, []byte(raw))
		doc.ID = id
		out = append(out, doc)
	}
	return out, rows.Err()
}
