package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ebb/internal/harness"
	"github.com/roach88/ebb/internal/store"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database string

	// IDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.RunIDGenerator
}

// RecordResult is the JSON payload of the record command.
type RecordResult struct {
	RunID    string `json:"run_id"`
	Scenario string `json:"scenario"`
	Ticks    int    `json:"ticks"`
	Seq      int64  `json:"seq"`
	Pass     bool   `json:"pass"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <scenario>",
		Short: "Run a scenario and store its trace",
		Long: `Run a scenario and store the scenario source together with its canonical
trace in a SQLite database (created if it doesn't exist).

Recorded runs can later be checked for determinism with "ebb replay".
Assertion failures are reported but the run is still recorded.

Examples:
  ebb record --db ./ebb.db ./scenarios/orbit.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRecord(opts *RecordOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	source, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read scenario", err)
	}
	format := scenarioFormat(path)

	scenario, err := parseScenarioSource(path, format, source)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	result, err := harness.Run(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeRunFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	idGen := opts.IDGenerator
	if idGen == nil {
		idGen = store.UUIDv7Generator{}
	}

	run := &store.Run{
		ID:             idGen.Generate(),
		ScenarioName:   scenario.Name,
		ScenarioSource: source,
		Format:         format,
		Ticks:          scenario.Ticks,
	}
	if err := st.WriteRun(context.Background(), run, result.Trace); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	formatter.VerboseLog("recorded %d samples to %s", result.Trace.Len(), opts.Database)

	rec := RecordResult{
		RunID:    run.ID,
		Scenario: run.ScenarioName,
		Ticks:    run.Ticks,
		Seq:      run.Seq,
		Pass:     result.Pass,
	}

	if formatter.IsJSON() {
		return formatter.Success(rec)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Recorded run %s (%s, %d ticks)\n", rec.RunID, rec.Scenario, rec.Ticks)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  warning: %s\n", e)
	}
	return nil
}
