package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ebb/internal/harness"
	"github.com/roach88/ebb/internal/store"
	"github.com/roach88/ebb/internal/trace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Scenario      string `json:"scenario"`
	Ticks         int    `json:"ticks"`
	Deterministic bool   `json:"deterministic"`
	Diff          string `json:"diff,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run recorded scenarios and verify determinism",
		Long: `Re-run every recorded scenario from its stored source on a fresh engine and
verify that the new trace equals the recorded one.

Exit codes:
  0 - All runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  ebb replay --db ./ebb.db
  ebb replay --db ./ebb.db --run 0192f0c4-...
  ebb replay --db ./ebb.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}

	for _, run := range runs {
		runResult, err := replayAndVerifyRun(ctx, st, run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		formatter.VerboseLog("replayed %s: deterministic=%v", run.ID, runResult.Deterministic)

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.IsJSON() {
		if !result.AllDeterministic {
			if err := formatter.Failure(result, ErrCodeDeterminism, "determinism verification failed"); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "determinism verification failed")
		}
		return formatter.Success(result)
	}

	return outputReplayText(cmd, result, opts.Verbose)
}

// replayAndVerifyRun re-runs a stored scenario and compares the traces.
func replayAndVerifyRun(ctx context.Context, st *store.Store, run store.Run) (ReplayRunResult, error) {
	recorded, err := st.ReadSamples(ctx, run.ID)
	if err != nil {
		return ReplayRunResult{}, err
	}

	scenario, err := parseScenarioSource(run.ScenarioName, run.Format, run.ScenarioSource)
	if err != nil {
		return ReplayRunResult{}, fmt.Errorf("stored scenario no longer loads: %w", err)
	}

	fresh, err := harness.Run(scenario)
	if err != nil {
		return ReplayRunResult{}, fmt.Errorf("replay failed: %w", err)
	}

	diff, err := trace.Diff(recorded, fresh.Trace)
	if err != nil {
		return ReplayRunResult{}, err
	}

	return ReplayRunResult{
		RunID:         run.ID,
		Scenario:      run.ScenarioName,
		Ticks:         run.Ticks,
		Deterministic: diff == "",
		Diff:          diff,
	}, nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Run: %s (%s)\n", status, run.RunID, run.Scenario)
		if verbose || !run.Deterministic {
			fmt.Fprintf(w, "  Ticks: %d\n", run.Ticks)
		}
		if run.Diff != "" {
			fmt.Fprintf(w, "  Diff: %s\n", run.Diff)
		}
	}

	fmt.Fprintln(w)
	if !result.AllDeterministic {
		fmt.Fprintln(w, "✗ Determinism verification failed")
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	fmt.Fprintln(w, "✓ All runs deterministic")
	return nil
}
