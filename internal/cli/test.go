package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ebb/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern)
	GoldenDir string // golden directory (default: <scenarios-dir>/golden)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden"` // "match", "updated", "missing" or "mismatch"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// Golden comparison outcomes.
const (
	goldenMatch    = "match"
	goldenUpdated  = "updated"
	goldenMissing  = "missing"
	goldenMismatch = "mismatch"
)

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenarios against assertions and golden traces",
		Long: `Run every scenario in a directory, evaluating its assertions and comparing
its trace with the golden file <golden-dir>/<name>.golden when one exists.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  ebb test ./scenarios
  ebb test ./scenarios --filter "orbit*"
  ebb test ./scenarios --update
  ebb test ./scenarios --golden-dir ./testdata/golden --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default <scenarios-dir>/golden)")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	scenarioFiles, err := FindScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(scenariosDir, "golden")
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	if len(scenarioFiles) == 0 {
		if formatter.IsJSON() {
			return outputTestJSON(formatter, result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	for _, file := range scenarioFiles {
		scenResult := runScenario(file, goldenDir, opts)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if !formatter.IsJSON() {
			printScenarioResult(cmd, scenResult)
		}
	}

	if formatter.IsJSON() {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(cmd, result)
}

// runScenario loads, runs and checks a single scenario file.
func runScenario(file, goldenDir string, opts *TestOptions) ScenarioResult {
	res := ScenarioResult{
		Name: strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)),
		File: file,
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return res
	}
	res.Name = scenario.Name

	result, err := harness.Run(scenario)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return res
	}
	res.Errors = append(res.Errors, result.Errors...)

	if opts.Update {
		if err := harness.WriteGolden(goldenDir, result.Trace); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("failed to update golden file: %v", err))
		} else {
			res.Golden = goldenUpdated
		}
	} else {
		diff, err := harness.CompareGolden(goldenDir, result.Trace)
		switch {
		case errors.Is(err, harness.ErrNoGolden):
			// No golden file - assertion-based validation only
			res.Golden = goldenMissing
		case err != nil:
			res.Errors = append(res.Errors, fmt.Sprintf("golden comparison failed: %v", err))
		case diff != "":
			res.Golden = goldenMismatch
			res.Errors = append(res.Errors,
				fmt.Sprintf("trace does not match golden file (run with --update to regenerate): %s", diff))
		default:
			res.Golden = goldenMatch
		}
	}

	res.Pass = len(res.Errors) == 0
	return res
}

func printScenarioResult(cmd *cobra.Command, res ScenarioResult) {
	w := cmd.OutOrStdout()
	if res.Pass {
		suffix := ""
		if res.Golden == goldenUpdated {
			suffix = " (golden updated)"
		}
		fmt.Fprintf(w, "✓ %s%s\n", res.Name, suffix)
		return
	}

	fmt.Fprintf(w, "✗ %s\n", res.Name)
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if err := formatter.Failure(result, ErrCodeTestFailed, msg); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(result)
}

// outputTestText outputs the test summary as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
