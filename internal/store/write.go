package store

import (
	"context"
	"fmt"

	"github.com/roach88/ebb/internal/trace"
)

// Scenario formats accepted in runs.format.
const (
	FormatYAML = "yaml"
	FormatCUE  = "cue"
)

// Run is one recorded scenario execution.
type Run struct {
	ID             string `json:"id"`
	ScenarioName   string `json:"scenario_name"`
	ScenarioSource []byte `json:"-"`
	Format         string `json:"format"`
	Ticks          int    `json:"ticks"`
	Seq            int64  `json:"seq"`
}

// WriteRun stores a run and its trace in a single transaction.
// run.Seq is assigned here: one past the highest existing created_seq.
//
// The trace's samples are stored as canonical JSON, one row per tick.
func (s *Store) WriteRun(ctx context.Context, run *Run, tr *trace.Trace) error {
	if run.ID == "" {
		return fmt.Errorf("write run: id is required")
	}
	if run.Ticks != tr.Len() {
		return fmt.Errorf("write run: ticks %d does not match %d samples", run.Ticks, tr.Len())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(created_seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario_name, scenario_source, format, ticks, created_seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.ScenarioName, run.ScenarioSource, run.Format, run.Ticks, seq)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples (run_id, tick, values_json) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("write run: prepare samples: %w", err)
	}
	defer stmt.Close()

	for _, sample := range tr.Samples {
		valuesJSON, err := trace.EncodeValues(sample.Values)
		if err != nil {
			return fmt.Errorf("write run: tick %d: %w", sample.Tick, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, sample.Tick, string(valuesJSON)); err != nil {
			return fmt.Errorf("write run: tick %d: %w", sample.Tick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}

	run.Seq = seq
	return nil
}

// DeleteRun removes a run and its samples. Deleting a missing run is not an
// error.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
