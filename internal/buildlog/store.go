// Package buildlog keeps a ledger of past builds in SQLite.
package buildlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one row of the ledger.
type Record struct {
	BuildID     string
	StartedAt   time.Time
	Duration    time.Duration
	Outcome     string
	Directories int
	Pages       int
	Copies      int
	Bytes       int64
	Error       string
}

// Store persists build records.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if needed creates) the ledger at dbPath.
// Use ":memory:" for an in-memory ledger.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		directories INTEGER NOT NULL DEFAULT 0,
		pages INTEGER NOT NULL DEFAULT 0,
		copies INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a record to the ledger.
func (s *Store) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errText sql.NullString
	if r.Error != "" {
		errText = sql.NullString{String: r.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started_at, duration_ms, outcome, directories, pages, copies, bytes, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BuildID, r.StartedAt.UnixMilli(), r.Duration.Milliseconds(), r.Outcome,
		r.Directories, r.Pages, r.Copies, r.Bytes, errText,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started_at, duration_ms, outcome, directories, pages, copies, bytes, error
		 FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r         Record
			startedMS int64
			durMS     int64
			errText   sql.NullString
		)
		if err := rows.Scan(&r.BuildID, &startedMS, &durMS, &r.Outcome,
			&r.Directories, &r.Pages, &r.Copies, &r.Bytes, &errText); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedMS)
		r.Duration = time.Duration(durMS) * time.Millisecond
		r.Error = errText.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
