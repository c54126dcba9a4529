package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ssplabs/atende/internal/result"
)

// SQLiteStore persists session histories in SQLite. Sessions whose last
// append is older than the TTL are removed by EvictExpired, which the
// caller schedules (a cron sweep in the server).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for concurrent readers during appends.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// GetHistory returns the session's messages in append order. A session
// with no rows yields an empty history.
func (s *SQLiteStore) GetHistory(ctx context.Context, sessionID string) result.Result[[]Message] {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		return result.Wrap[[]Message]("query session history", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		var unix int64
		if err := rows.Scan(&m.Role, &m.Content, &unix); err != nil {
			return result.Wrap[[]Message]("scan session message", err)
		}
		m.Timestamp = time.Unix(unix, 0).UTC()
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return result.Wrap[[]Message]("read session history", err)
	}
	return result.Ok(msgs)
}

// Append adds msg to the end of the session's history.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, msg Message) result.Result[struct{}] {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, msg.Role, msg.Content, ts.Unix())
	if err != nil {
		return result.Wrap[struct{}]("append session message", err)
	}
	return result.Ok(struct{}{})
}

// EvictExpired deletes every session whose most recent message is older
// than ttl. Returns the number of sessions removed.
func (s *SQLiteStore) EvictExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl).Unix()
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM messages WHERE session_id IN (
			SELECT session_id FROM messages
			GROUP BY session_id
			HAVING MAX(created_at) < ?
		)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("evict expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.Info("evicted expired sessions", "rows", n)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
