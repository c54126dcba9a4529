package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSink stores interaction records in a SQLite table.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if needed) the database at dbPath.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open interactions database: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		modality TEXT NOT NULL,
		latency_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id, id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create interactions schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Store inserts one record.
func (s *SQLiteSink) Store(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (session_id, input, output, modality, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Input, rec.Output, rec.Modality, rec.LatencyMS, rec.Timestamp.Unix())
	return err
}

// Count returns the number of stored records, for tests and ops checks.
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error { return s.db.Close() }

// NDJSONSink appends records as one JSON object per line.
type NDJSONSink struct {
	mu   sync.Mutex
	path string
}

// NewNDJSONSink creates a sink appending to path.
func NewNDJSONSink(path string) (*NDJSONSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &NDJSONSink{path: path}, nil
}

// Store appends one line. The file is opened per write so rotation by
// external tooling is safe.
func (s *NDJSONSink) Store(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(rec)
}
