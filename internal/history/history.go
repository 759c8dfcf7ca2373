// Package history records evaluated expressions and their results in a
// SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("history store is closed")

// Entry is one recorded evaluation.
type Entry struct {
	// ID is a time-ordered UUID. Record assigns one if it is zero.
	ID uuid.UUID
	// Input is the expression source.
	Input string
	// Output is the formatted result, or the error message if Failed.
	Output string
	// Failed reports whether evaluation produced an error.
	Failed bool
	// At is when the evaluation happened. Record uses the current time if
	// it is zero.
	At time.Time
}

// Store is a history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating its parent
// directory if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// One connection, so that a :memory: database is the same database for
	// every query.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record adds an entry and returns it with its ID and time filled in.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if s.db == nil {
		return e, ErrClosed
	}
	if e.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return e, fmt.Errorf("generating entry id: %w", err)
		}
		e.ID = id
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	e.At = e.At.UTC()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO entries (entry_id, input, output, failed, created_at) VALUES (?, ?, ?, ?, ?)",
		e.ID.String(), e.Input, e.Output, e.Failed, e.At.Format(time.RFC3339Nano),
	)
	if err != nil {
		return e, fmt.Errorf("recording %q: %w", e.Input, err)
	}
	return e, nil
}

// Recent returns up to n of the latest entries, oldest first. n <= 0 returns
// every entry.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if n <= 0 {
		n = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, input, output, failed, created_at FROM (
			SELECT rowid AS seq, * FROM entries ORDER BY rowid DESC LIMIT ?
		) ORDER BY seq ASC`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var r []Entry
	for rows.Next() {
		e, err := hydrateEntry(rows)
		if err != nil {
			return nil, err
		}
		r = append(r, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return r, nil
}

// Count returns the number of recorded entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

// Clear deletes all entries.
func (s *Store) Clear(ctx context.Context) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func hydrateEntry(rows *sql.Rows) (Entry, error) {
	var (
		e      Entry
		id, at string
	)
	if err := rows.Scan(&id, &e.Input, &e.Output, &e.Failed, &at); err != nil {
		return e, fmt.Errorf("scanning history entry: %w", err)
	}
	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return e, fmt.Errorf("history entry id %q: %w", id, err)
	}
	if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return e, fmt.Errorf("history entry %s time: %w", id, err)
	}
	return e, nil
}
