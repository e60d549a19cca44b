package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/ebb/internal/trace"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run and a matching trace with ticks samples.
func createTestRun(id, name string, ticks int) (*Run, *trace.Trace) {
	tr := trace.New(name)
	for i := 1; i <= ticks; i++ {
		tr.Append(int64(i), map[string]any{
			"on":    i%2 == 0,
			"x":     float64(i) / 4,
			"n":     int64(i * 10),
			"color": "red",
		})
	}
	run := &Run{
		ID:             id,
		ScenarioName:   name,
		ScenarioSource: []byte("name: " + name + "\n"),
		Format:         FormatYAML,
		Ticks:          ticks,
	}
	return run, tr
}
