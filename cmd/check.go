package cmd

import (
	"github.com/semiconip/patentspike/core"
	"github.com/spf13/cobra"
)

// checkCmd focused on scheduled pipeline gating.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Exit non-zero when any company has a Strategic Spike.",
	Long: `Run spike detection and fail when any selected company has a category at or above
--threshold. Prints the offending categories before exiting.

Use cases:
- Nightly jobs that page someone on a competitor spike
- Gating a downstream report build

Examples:
  patentspike check --companies TSMC,Intel --threshold 250
  patentspike check --output json --output-file check.json`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteCheck, "Spike check failed"),
}
