package cmd

import (
	"github.com/semiconip/patentspike/core"
	"github.com/spf13/cobra"
)

// companiesCmd lists the tracked companies and their KIPRIS queries.
var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the companies known to the registry.",
	Long: `Print every tracked company with the KIPRIS search word used for it.
Names not in the registry are searched verbatim.

No KIPRIS request is made.`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteCompanies, "Cannot list companies"),
}

// tiersCmd displays the tier rules.
var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Display the spike tiers, their cutoffs and colors.",
	Long: `Show how a spike ratio maps to a tier under the current --threshold, and the
technology categories and their keywords.

No KIPRIS request is made.

Examples:
  patentspike tiers
  patentspike tiers --threshold 300 --new-activity-tier`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteTiers, "Cannot display tiers"),
}
