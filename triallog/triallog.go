// Package triallog persists localization benchmark trials to sqlite so that
// runs can be compared after the fact.
package triallog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the trial database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open trial db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trials (
			run_id    TEXT NOT NULL,
			trial     INTEGER NOT NULL,
			true_x    DOUBLE,
			true_y    DOUBLE,
			est_x     DOUBLE,
			est_y     DOUBLE,
			error_m   DOUBLE,
			quality   DOUBLE,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_trials_run ON trials(run_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create trials schema: %w", err)
	}
	return &DB{db}, nil
}

// RecordTrial appends one trial outcome for the given run.
func (db *DB) RecordTrial(runID string, trial int, trueX, trueY, estX, estY, errorM, quality float64) error {
	_, err := db.Exec(
		"INSERT INTO trials (run_id, trial, true_x, true_y, est_x, est_y, error_m, quality) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		runID, trial, trueX, trueY, estX, estY, errorM, quality,
	)
	if err != nil {
		return fmt.Errorf("record trial %d: %w", trial, err)
	}
	return nil
}

// Summary aggregates one run.
type Summary struct {
	Trials      int
	MeanError   float64
	MaxError    float64
	MeanQuality float64
}

// RunSummary returns the aggregate statistics for runID.
func (db *DB) RunSummary(runID string) (Summary, error) {
	var s Summary
	row := db.QueryRow(
		"SELECT COUNT(*), COALESCE(AVG(error_m), 0), COALESCE(MAX(error_m), 0), COALESCE(AVG(quality), 0) FROM trials WHERE run_id = ?",
		runID,
	)
	if err := row.Scan(&s.Trials, &s.MeanError, &s.MaxError, &s.MeanQuality); err != nil {
		return Summary{}, fmt.Errorf("summarize run %s: %w", runID, err)
	}
	return s, nil
}
