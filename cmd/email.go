package cmd

import (
	"github.com/semiconip/patentspike/core"
	"github.com/spf13/cobra"
)

// emailCmd mails the alert report of each company.
var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Mail an HTML alert for every company with a Strategic Spike or Emerging Signal.",
	Long: `Run spike detection and send one HTML report per company that has a Strategic
Spike or an Emerging Signal. Companies without either are skipped.

SMTP settings come from flags or the environment:
  SMTP_HOST, SMTP_PORT, ALERT_EMAIL (user and sender), ALERT_EMAIL_PASSWORD

Examples:
  patentspike email --recipients ip-team@example.com,cto@example.com
  patentspike email --dry-run > preview.html`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteEmail, "Cannot send alerts"),
}
