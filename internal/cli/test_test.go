package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommand_MatchesGoldens(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, scenariosDir, "--golden-dir", goldenDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ basics\n")
	assert.Contains(t, out, "✓ orbit\n")
	assert.Contains(t, out, "✓ wave_shot\n")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_JSON(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, scenariosDir, "--golden-dir", goldenDir, "--filter", "orbit*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "orbit", resp.Data.Scenarios[0].Name)
	assert.Equal(t, goldenMatch, resp.Data.Scenarios[0].Golden)
}

func TestTestCommand_MissingGoldenStillPasses(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, scenariosDir, "--golden-dir", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	for _, s := range resp.Data.Scenarios {
		assert.Equal(t, goldenMissing, s.Golden, s.Name)
	}
}

func TestTestCommand_UpdateThenMismatch(t *testing.T) {
	dir := t.TempDir()
	golden := filepath.Join(dir, "golden")
	writeScenario(t, dir, "seq.yaml", seqYAML)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ seq (golden updated)")
	assert.FileExists(t, filepath.Join(golden, "seq.golden"))

	cmd = NewTestCommand(&RootOptions{Format: "text"})
	_, err = execute(t, cmd, dir)
	require.NoError(t, err)

	// Same name, different behavior.
	writeScenario(t, dir, "seq.yaml", `name: seq
ticks: 3
probes:
  - name: seq
    primitive: frames
    values: [1, 2, 4]
  - name: fade
    primitive: transition
    from: 0
    to: 4
    time: 2
`)
	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, err = execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ seq")
	assert.Contains(t, out, `tick 2: probe "seq": 3 != 4`)
}

func TestTestCommand_FailedAssertions(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "failing.yaml", failingYAML)

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
}

func TestTestCommand_EmptyDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommand_MissingDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := FindScenarioFiles(scenariosDir, "")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "basics.yaml", filepath.Base(files[0]))
	assert.Equal(t, "orbit.yaml", filepath.Base(files[1]))
	assert.Equal(t, "wave_shot.cue", filepath.Base(files[2]))

	files, err = FindScenarioFiles(scenariosDir, "wave*")
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestFindScenarioFiles_SkipsGoldenAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	writeScenario(t, dir, "a.yaml", seqYAML)
	writeScenario(t, dir, "notes.txt", "hi")
	writeScenario(t, filepath.Join(dir, "golden"), "b.yaml", seqYAML)
	writeScenario(t, filepath.Join(dir, "nested"), "c.yml", seqYAML)

	files, err := FindScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "nested", "c.yml"),
	}, files)
}

func TestFindScenarioFiles_Errors(t *testing.T) {
	_, err := FindScenarioFiles(scenariosDir, "[")
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeInvalid, loadErr.Code)

	file := writeScenario(t, t.TempDir(), "a.yaml", seqYAML)
	_, err = FindScenarioFiles(file, "")
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "not a directory")
}
