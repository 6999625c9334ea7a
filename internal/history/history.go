// Package history keeps a per-project record of runs in a local SQLite
// database so later runs can show the trend of remaining issues.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded pipeline run.
type Run struct {
	Started         time.Time
	Root            string
	Found           int
	Fixed           int
	Remaining       int
	Patched         int
	Iterations      int
	TypecheckFailed bool
	Duration        time.Duration
	ExitCode        int
}

// Store records runs. A Store opened with an empty path is disabled: it
// records nothing and returns no runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return &Store{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started TEXT NOT NULL,
		root TEXT NOT NULL,
		found INTEGER NOT NULL,
		fixed INTEGER NOT NULL,
		remaining INTEGER NOT NULL,
		patched INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		typecheck_failed INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		exit_code INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_root_started ON runs(root, started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Enabled reports whether the store writes anywhere.
func (s *Store) Enabled() bool { return s.db != nil }

// Record stores r.
func (s *Store) Record(r Run) error {
	if s.db == nil {
		return nil
	}
	const query = `
		INSERT INTO runs
		(started, root, found, fixed, remaining, patched, iterations, typecheck_failed, duration_ms, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		r.Started.UTC().Format(timeLayout),
		r.Root,
		r.Found,
		r.Fixed,
		r.Remaining,
		r.Patched,
		r.Iterations,
		r.TypecheckFailed,
		r.Duration.Milliseconds(),
		r.ExitCode,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns up to n of the latest runs for root, oldest first.
func (s *Store) Recent(root string, n int) ([]Run, error) {
	if s.db == nil {
		return nil, nil
	}
	const query = `
		SELECT started, root, found, fixed, remaining, patched, iterations, typecheck_failed, duration_ms, exit_code
		FROM runs
		WHERE root = ?
		ORDER BY started DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.Query(query, root, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started string
			ms      int64
		)
		if err := rows.Scan(&started, &r.Root, &r.Found, &r.Fixed, &r.Remaining, &r.Patched,
			&r.Iterations, &r.TypecheckFailed, &ms, &r.ExitCode); err != nil {
			return nil, err
		}
		if r.Started, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("bad start time %q: %w", started, err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
