package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeNotFound, "scenario not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "scenario not found", resp.Error.Message)
}

func TestOutputFormatter_JSONFailureCarriesData(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Failure(map[string]int{"failed": 2}, ErrCodeTestFailed, "2 scenario(s) failed"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeInvalid, "bad scenario", map[string]string{"file": "x.yaml"}))
	assert.Equal(t, "Error [E002]: bad scenario\n", buf.String())
}

func TestOutputFormatter_VerboseLogGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("loaded %d probes", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 3 probes\n", errOut.String())

	formatter.Verbose = false
	formatter.VerboseLog("hidden")
	assert.Equal(t, "loaded 3 probes\n", errOut.String())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", NewExitError(ExitFailure, "failed")), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestWrapExitError(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to record run", inner)

	assert.Equal(t, "failed to record run: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
}
