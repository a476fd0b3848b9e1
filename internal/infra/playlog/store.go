// Package playlog keeps a history of playback outcomes in SQLite so the
// operator can see what played and what failed.
package playlog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS plays (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	kind     TEXT    NOT NULL,
	path     TEXT    NOT NULL,
	detail   TEXT    NOT NULL DEFAULT '',
	at_unix  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_plays_kind ON plays(kind);
`

// Entry is one recorded outcome.
type Entry struct {
	ID     int64
	Kind   string // started, ended, failed, skipped, promo_failed
	Path   string
	Detail string
	At     time.Time
}

// Store is a SQLite backed play log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the log at path. ":memory:" keeps it in memory.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create play log directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open play log")
	}
	// One connection: an in-memory database lives per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize play log schema")
	}

	zlog.Info().Msgf("play log opened: path=%s", path)
	return &Store{db: db}, nil
}

// Record appends one outcome.
func (s *Store) Record(ctx context.Context, kind, path, detail string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plays (kind, path, detail, at_unix) VALUES (?, ?, ?, ?)`,
		kind, path, detail, at.UnixMilli())
	if err != nil {
		return errors.Wrap(err, "failed to record play")
	}
	return nil
}

// Recent returns the newest n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, path, detail, at_unix FROM plays ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query play log")
	}
	defer rows.Close()

	entries := make([]Entry, 0, n)
	for rows.Next() {
		var (
			e  Entry
			at int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Path, &e.Detail, &at); err != nil {
			return nil, errors.Wrap(err, "failed to scan play log row")
		}
		e.At = time.UnixMilli(at)
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "failed to read play log")
}

// Counts returns the number of entries per kind.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM plays GROUP BY kind`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count play log")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan play log count")
		}
		counts[kind] = n
	}
	return counts, errors.Wrap(rows.Err(), "failed to read play log counts")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
