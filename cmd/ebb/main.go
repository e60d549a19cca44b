// Command ebb samples, tests, records and previews tick-driven animation
// timing primitives.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/ebb/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
