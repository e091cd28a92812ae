// Package store keeps a local ledger of inference runs so batches can be
// audited after the fact: which arm ran, against which year, and where the
// result CSV landed.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/zkbaum/handai/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		experiment TEXT NOT NULL,
		year INTEGER NOT NULL,
		model TEXT NOT NULL,
		ensembling INTEGER NOT NULL DEFAULT 1,
		questions INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0,
		output_path TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// BeginRun records the start of an inference batch.
func (s *Store) BeginRun(run model.Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, experiment, year, model, ensembling, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Experiment, run.Year, run.Model, run.Ensembling, run.StartedAt,
	)
	return err
}

// FinishRun records the outcome of a batch. Partial batches flushed after a
// rate limit still finish, with the question count reflecting what was
// actually written.
func (s *Store) FinishRun(id string, questions, failures int, outputPath string) error {
	now := time.Now()
	_, err := s.db.Exec(
		`UPDATE runs SET questions = ?, failures = ?, output_path = ?, finished_at = ? WHERE id = ?`,
		questions, failures, outputPath, now, id,
	)
	return err
}

// GetRun returns a run by ID.
func (s *Store) GetRun(id string) (model.Run, error) {
	var run model.Run
	err := s.db.QueryRow(
		`SELECT id, experiment, year, model, ensembling, questions, failures, output_path, started_at, finished_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Experiment, &run.Year, &run.Model, &run.Ensembling,
		&run.Questions, &run.Failures, &run.OutputPath, &run.StartedAt, &run.FinishedAt)
	return run, err
}

// ListRuns returns all recorded runs, newest first.
func (s *Store) ListRuns() ([]model.Run, error) {
	rows, err := s.db.Query(
		`SELECT id, experiment, year, model, ensembling, questions, failures, output_path, started_at, finished_at
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.Experiment, &run.Year, &run.Model, &run.Ensembling,
			&run.Questions, &run.Failures, &run.OutputPath, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunCount returns the number of recorded runs.
func (s *Store) RunCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}
