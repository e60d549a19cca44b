package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/roach88/ebb/internal/testutil"
)

// scenariosDir holds the scenarios shared with the harness golden tests.
var scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")

var goldenDir = filepath.Join("..", "harness", "testdata", "golden")

const failingYAML = `name: failing
ticks: 2
probes:
  - name: seq
    primitive: frames
    values: [1, 2]
assertions:
  - type: value
    probe: seq
    tick: 1
    value: 1
`

const seqYAML = `name: seq
ticks: 3
probes:
  - name: seq
    primitive: frames
    values: [1, 2, 3]
  - name: fade
    primitive: transition
    from: 0
    to: 4
    time: 2
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	return testutil.WriteFile(t, dir, name, content)
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
