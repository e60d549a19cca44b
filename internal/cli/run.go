package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ebb/internal/engine"
	"github.com/roach88/ebb/internal/harness"
	"github.com/roach88/ebb/internal/trace"
)

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Scenario string       `json:"scenario"`
	Pass     bool         `json:"pass"`
	Errors   []string     `json:"errors,omitempty"`
	Trace    *trace.Trace `json:"trace"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario and print its trace",
		Long: `Run a scenario file (.yaml, .yml or .cue) and print every tick's probe outputs.

Assertions in the scenario are evaluated; any failure is reported and the
command exits with code 1.

Exit codes:
  0 - Scenario ran and all assertions held
  1 - One or more assertions failed
  2 - Command error (file not found, invalid scenario, etc.)

Examples:
  ebb run ./scenarios/orbit.yaml
  ebb run ./scenarios/wave_shot.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runScenarioFile(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("loaded scenario %q: %d probes, %d ticks", scenario.Name, len(scenario.Probes), scenario.Ticks)

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	result, err := harness.RunWithOptions(scenario, engine.WithLogger(logger))
	if err != nil {
		_ = formatter.Error(ErrCodeRunFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	payload := RunResult{
		Scenario: scenario.Name,
		Pass:     result.Pass,
		Errors:   result.Errors,
		Trace:    result.Trace,
	}

	if formatter.IsJSON() {
		if !result.Pass {
			if err := formatter.Failure(payload, ErrCodeAssertion, "assertions failed"); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(result.Errors)))
		}
		return formatter.Success(payload)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Scenario: %s (%d ticks)\n", scenario.Name, scenario.Ticks)
	for _, s := range result.Trace.Samples {
		fmt.Fprintf(w, "%6d  %s\n", s.Tick, formatSample(s))
	}

	if !result.Pass {
		fmt.Fprintln(w)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n", e)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(result.Errors)))
	}
	return nil
}

// formatSample renders "name=value" pairs sorted by probe name.
func formatSample(s trace.Sample) string {
	parts := make([]string, 0, len(s.Values))
	for _, name := range slices.Sorted(maps.Keys(s.Values)) {
		parts = append(parts, name+"="+formatValue(s.Values[name]))
	}
	return strings.Join(parts, " ")
}
