package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ebb/internal/store"
)

// recordFixed records a scenario under a fixed run id.
func recordFixed(t *testing.T, dbPath, scenarioPath string, ids ...string) string {
	t.Helper()
	rootOpts := &RootOptions{Format: "text"}
	opts := &RecordOptions{
		RootOptions: rootOpts,
		Database:    dbPath,
		IDGenerator: store.NewFixedGenerator(ids...),
	}
	cmd := NewRecordCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	require.NoError(t, runRecord(opts, scenarioPath, cmd))
	return buf.String()
}

func TestRecordCommand_StoresRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ebb.db")
	scenarioPath := writeScenario(t, dir, "seq.yaml", seqYAML)

	out := recordFixed(t, dbPath, scenarioPath, "run-1")
	assert.Equal(t, "Recorded run run-1 (seq, 3 ticks)\n", out)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "seq", run.ScenarioName)
	assert.Equal(t, store.FormatYAML, run.Format)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, seqYAML, string(run.ScenarioSource))

	tr, err := st.ReadSamples(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Len())
}

func TestRecordCommand_JSONWithUUID(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ebb.db")

	cmd := NewRecordCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "--db", dbPath, filepath.Join(scenariosDir, "wave_shot.cue"))
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   RecordResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data.RunID, 36)
	assert.Equal(t, "wave_shot", resp.Data.Scenario)
	assert.Equal(t, 16, resp.Data.Ticks)
	assert.True(t, resp.Data.Pass)
}

func TestRecordCommand_Errors(t *testing.T) {
	dir := t.TempDir()

	cmd := NewRecordCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, filepath.Join(scenariosDir, "basics.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)

	cmd = NewRecordCommand(&RootOptions{Format: "text"})
	_, err = execute(t, cmd, "--db", filepath.Join(dir, "ebb.db"), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
