package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ebb/internal/store"
	"github.com/roach88/ebb/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Probe    string // optional - show only this probe
	Delete   bool   // remove the run instead of printing it
}

// DeleteResult reports a removed run.
type DeleteResult struct {
	Deleted string `json:"deleted"`
	Samples int    `json:"samples"`
}

// TraceResult holds a stored run and its samples.
type TraceResult struct {
	Run   store.Run    `json:"run"`
	Trace *trace.Trace `json:"trace"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded runs and their traces",
		Long: `Show the runs stored in a database. With --run, print that run's trace.
With --run and --delete, remove the run and its samples instead.

Examples:
  ebb trace --db ./ebb.db
  ebb trace --db ./ebb.db --run 0192f0c4-...
  ebb trace --db ./ebb.db --run 0192f0c4-... --probe x --format json
  ebb trace --db ./ebb.db --run 0192f0c4-... --delete`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to print")
	cmd.Flags().StringVar(&opts.Probe, "probe", "", "show only this probe")
	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "delete the run given by --run")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Delete && opts.RunID == "" {
		_ = formatter.Error(ErrCodeInvalidOption, "--delete requires --run", nil)
		return NewExitError(ExitCommandError, "--delete requires --run")
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if formatter.IsJSON() {
			return formatter.Success(runs)
		}
		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs found in database.")
			return nil
		}
		for _, run := range runs {
			fmt.Fprintf(w, "%4d  %s  %-20s %s %d ticks\n", run.Seq, run.ID, run.ScenarioName, run.Format, run.Ticks)
		}
		return nil
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	tr, err := st.ReadSamples(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read samples", err)
	}

	if opts.Delete {
		if err := st.DeleteRun(ctx, run.ID); err != nil {
			return WrapExitError(ExitCommandError, "failed to delete run", err)
		}
		if formatter.IsJSON() {
			return formatter.Success(DeleteResult{Deleted: run.ID, Samples: tr.Len()})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s (%s, %d samples)\n", run.ID, run.ScenarioName, tr.Len())
		return nil
	}
	if opts.Probe != "" {
		tr = filterProbe(tr, opts.Probe)
	}

	if formatter.IsJSON() {
		return formatter.Success(TraceResult{Run: run, Trace: tr})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run: %s\nScenario: %s (%d ticks, %s)\n\n", run.ID, run.ScenarioName, run.Ticks, run.Format)
	for _, s := range tr.Samples {
		fmt.Fprintf(w, "%6d  %s\n", s.Tick, formatSample(s))
	}
	return nil
}

// filterProbe keeps only one probe's values.
func filterProbe(tr *trace.Trace, probe string) *trace.Trace {
	out := trace.New(tr.Scenario)
	for _, s := range tr.Samples {
		values := map[string]any{}
		if v, ok := s.Values[probe]; ok {
			values[probe] = v
		}
		out.Append(s.Tick, values)
	}
	return out
}
