package cmd

import (
	"github.com/semiconip/patentspike/core"
	"github.com/spf13/cobra"
)

// syncCmd writes the dashboard documents.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write the dashboard payload to a JSON file and the analysis store.",
	Long: `Build the dashboard documents and publish them:
- dashboard_trends - per-company period counts and spikes (also written to --sync-file)
- dashboard_stats  - overview KPIs
- patent_alerts    - Strategic Spike alerts

Documents are stored in the analysis store when --analysis-backend is set.
--dry-run prints the documents without writing anything.

Examples:
  patentspike sync --sync-file dashboard.json --analysis-backend sqlite
  patentspike sync --dry-run`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteSync, "Cannot sync dashboard"),
}
