package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand_Text(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, filepath.Join(scenariosDir, "basics.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "Scenario: basics (8 ticks)\n")
	assert.Contains(t, out, `     1  blink=true fade=0.000000 held=1 late=10 letter="a" shout="YO"`)
	assert.Contains(t, out, `     6  blink=true fade=0.000000 held=6 late=40 letter="a" shout="HI"`)
}

func TestRunCommand_JSON(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, filepath.Join(scenariosDir, "wave_shot.cue"))
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Scenario string `json:"scenario"`
			Pass     bool   `json:"pass"`
			Trace    struct {
				Samples []json.RawMessage `json:"samples"`
			} `json:"trace"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "wave_shot", resp.Data.Scenario)
	assert.True(t, resp.Data.Pass)
	assert.Len(t, resp.Data.Trace.Samples, 16)
}

func TestRunCommand_FailedAssertion(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "failing.yaml", failingYAML)

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ assertion 0:")
}

func TestRunCommand_MissingFile(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_MissingArgs(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
