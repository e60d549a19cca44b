package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ebb/internal/harness"
)

// ValidationError describes one scenario file that failed to load.
type ValidationError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Scenarios []string          `json:"scenarios"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenarios without running them",
		Long: `Parse and validate scenario files without running them.

YAML scenarios are decoded strictly; CUE scenarios are checked against the
scenario schema. Probes and assertions are checked for consistency.

Examples:
  ebb validate ./scenarios/orbit.yaml
  ebb validate ./scenarios/*.yaml ./scenarios/*.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result := ValidationResult{Valid: true, Scenarios: []string{}}
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{File: path, Message: err.Error()})
			continue
		}
		formatter.VerboseLog("%s: scenario %q ok", path, scenario.Name)
		result.Scenarios = append(result.Scenarios, scenario.Name)
	}

	if formatter.IsJSON() {
		if !result.Valid {
			if err := formatter.Failure(result, ErrCodeInvalid, "validation failed"); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "validation failed")
		}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n  %s\n", e.File, e.Message)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) invalid", len(result.Errors), len(paths)))
	}

	fmt.Fprintf(w, "✓ %d scenario(s) valid\n", len(result.Scenarios))
	return nil
}
