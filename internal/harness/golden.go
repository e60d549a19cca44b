package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ebb/internal/trace"
)

// GoldenDir is the default fixture directory for golden traces.
const GoldenDir = "testdata/golden"

// ErrNoGolden is returned by CompareGolden when the golden file is missing.
var ErrNoGolden = errors.New("golden file not found")

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result's trace against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := result.Trace.Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}

// GoldenPath returns the golden file path for a scenario in dir.
func GoldenPath(dir, scenarioName string) string {
	return filepath.Join(dir, scenarioName+".golden")
}

// WriteGolden writes the canonical trace to dir, creating it if needed.
// Used by the CLI's test --update outside of go test.
func WriteGolden(dir string, tr *trace.Trace) error {
	data, err := tr.Canonical()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create golden dir: %w", err)
	}
	if err := os.WriteFile(GoldenPath(dir, tr.Scenario), data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden compares a trace with its golden file in dir. It returns ""
// on a match and a description of the first difference otherwise.
func CompareGolden(dir string, tr *trace.Trace) (string, error) {
	data, err := os.ReadFile(GoldenPath(dir, tr.Scenario))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNoGolden, GoldenPath(dir, tr.Scenario))
	}
	if err != nil {
		return "", fmt.Errorf("failed to read golden file: %w", err)
	}

	got, err := tr.Canonical()
	if err != nil {
		return "", err
	}
	if bytes.Equal(bytes.TrimSpace(data), got) {
		return "", nil
	}

	want, err := ParseGolden(data)
	if err != nil {
		return "", err
	}
	diff, err := trace.Diff(want, tr)
	if err != nil {
		return "", err
	}
	if diff == "" {
		diff = "canonical encoding differs"
	}
	return diff, nil
}

// ParseGolden decodes a canonical trace.
func ParseGolden(data []byte) (*trace.Trace, error) {
	var raw struct {
		Scenario string `json:"scenario"`
		Samples  []struct {
			Tick   int64           `json:"tick"`
			Values json.RawMessage `json:"values"`
		} `json:"samples"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse golden file: %w", err)
	}

	tr := trace.New(raw.Scenario)
	for _, s := range raw.Samples {
		values, err := trace.DecodeValues(s.Values)
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", s.Tick, err)
		}
		tr.Append(s.Tick, values)
	}
	return tr, nil
}
