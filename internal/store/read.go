package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/ebb/internal/trace"
)

// ErrRunNotFound is returned when a run id is not in the store.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run with the given id, including its scenario source.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, scenario_name, scenario_source, format, ticks, created_seq
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run ordered by created_seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) if the store holds no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario_name, scenario_source, format, ticks, created_seq
		FROM runs
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSamples rebuilds the recorded trace for a run, ordered by tick.
func (s *Store) ReadSamples(ctx context.Context, id string) (*trace.Trace, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, values_json
		FROM samples
		WHERE run_id = ?
		ORDER BY tick ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	tr := trace.New(run.ScenarioName)
	for rows.Next() {
		var (
			tick       int64
			valuesJSON string
		)
		if err := rows.Scan(&tick, &valuesJSON); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		values, err := trace.DecodeValues([]byte(valuesJSON))
		if err != nil {
			return nil, fmt.Errorf("run %s tick %d: %w", id, tick, err)
		}
		tr.Append(tick, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return tr, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	err := row.Scan(
		&run.ID,
		&run.ScenarioName,
		&run.ScenarioSource,
		&run.Format,
		&run.Ticks,
		&run.Seq,
	)
	return run, err
}
