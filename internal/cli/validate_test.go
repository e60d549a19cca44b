package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Valid(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd,
		filepath.Join(scenariosDir, "basics.yaml"),
		filepath.Join(scenariosDir, "orbit.yaml"),
		filepath.Join(scenariosDir, "wave_shot.cue"),
	)
	require.NoError(t, err)
	assert.Equal(t, "✓ 3 scenario(s) valid\n", out)
}

func TestValidateCommand_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := writeScenario(t, dir, "bad.yaml", `name: bad
ticks: 2
probes:
  - name: x
    primitive: spin
`)

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, filepath.Join(scenariosDir, "basics.yaml"), bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, "unknown primitive")
	assert.Contains(t, err.Error(), "1 of 2 scenario(s) invalid")
}

func TestValidateCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	bad := writeScenario(t, dir, "bad.yaml", "name: bad\nticks: 0\n")

	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, filepath.Join(scenariosDir, "orbit.yaml"), bad)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, []string{"orbit"}, resp.Data.Scenarios)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, bad, resp.Data.Errors[0].File)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
}

func TestValidateCommand_MissingArgs(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
