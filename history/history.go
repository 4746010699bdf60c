// Package history records benchmark reports in a SQLite database so runs
// against different destinations or builds can be compared later.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dendrascience/copybench/bench"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	version TEXT,
	started_at INTEGER NOT NULL,
	finished_at INTEGER,
	source_dir TEXT NOT NULL,
	dest_dir TEXT NOT NULL,
	iterations INTEGER NOT NULL,
	workers INTEGER NOT NULL,
	file_count INTEGER NOT NULL,
	total_bytes INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	strategy TEXT NOT NULL,
	iterations INTEGER NOT NULL,
	average_ns INTEGER NOT NULL,
	min_ns INTEGER NOT NULL,
	max_ns INTEGER NOT NULL,
	bytes INTEGER NOT NULL,
	mismatches INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS results_run_id ON results(run_id);
`

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Run is one recorded benchmark with its per-strategy results.
type Run struct {
	ID         string
	Version    string
	Started    time.Time
	Finished   time.Time
	SourceDir  string
	DestDir    string
	Iterations int
	Workers    int
	FileCount  int
	TotalBytes int64
	Results    []Result
}

// Result is one recorded strategy measurement.
type Result struct {
	Strategy   string
	Iterations int
	Average    time.Duration
	Min        time.Duration
	Max        time.Duration
	Bytes      int64
	Mismatches int
	Error      string
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history database path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps writes serialised
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTx(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Record stores a report and all of its results.
func (s *Store) Record(r bench.Report) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO runs
			(id, version, started_at, finished_at, source_dir, dest_dir, iterations, workers, file_count, total_bytes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID.String(), r.Version, r.Started.UnixNano(), r.Finished.UnixNano(),
			r.Config.SourceDir, r.Config.DestDir, r.Config.Iterations, r.Config.Workers,
			r.FileSet.Len(), r.Bytes)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		for i, res := range r.Results {
			_, err := tx.Exec(`INSERT INTO results
				(run_id, position, strategy, iterations, average_ns, min_ns, max_ns, bytes, mismatches, error)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID.String(), i, res.Strategy, res.Iterations,
				int64(res.Average), int64(res.Min), int64(res.Max), res.Bytes,
				len(res.Mismatches), res.Error)
			if err != nil {
				return fmt.Errorf("failed to insert result for %s: %w", res.Strategy, err)
			}
		}
		return nil
	})
}

// Recent returns up to limit runs, newest first, with their results.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit < 1 {
		limit = 1
	}
	rows, err := s.db.Query(`SELECT id, version, started_at, finished_at, source_dir, dest_dir,
		iterations, workers, file_count, total_bytes
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			version           sql.NullString
			started, finished int64
		)
		if err := rows.Scan(&run.ID, &version, &started, &finished, &run.SourceDir, &run.DestDir,
			&run.Iterations, &run.Workers, &run.FileCount, &run.TotalBytes); err != nil {
			return nil, err
		}
		run.Version = version.String
		run.Started = time.Unix(0, started)
		run.Finished = time.Unix(0, finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range runs {
		results, err := s.results(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
	}
	return runs, nil
}

func (s *Store) results(runID string) ([]Result, error) {
	rows, err := s.db.Query(`SELECT strategy, iterations, average_ns, min_ns, max_ns, bytes, mismatches, error
		FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			res           Result
			avg, min, max int64
			errText       sql.NullString
		)
		if err := rows.Scan(&res.Strategy, &res.Iterations, &avg, &min, &max, &res.Bytes, &res.Mismatches, &errText); err != nil {
			return nil, err
		}
		res.Average = time.Duration(avg)
		res.Min = time.Duration(min)
		res.Max = time.Duration(max)
		res.Error = errText.String
		results = append(results, res)
	}
	return results, rows.Err()
}
