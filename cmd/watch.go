package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/semiconip/patentspike/core"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/spf13/cobra"
)

// watchCmd runs the analysis on a cron schedule until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run spike detection on a schedule and alert on new spikes.",
	Long: `Run the analysis on a standard 5-field cron schedule, record every run in the
analysis store, mail alerts when --recipients is set, and optionally serve
Prometheus metrics on --metrics-addr.

Stops on SIGINT or SIGTERM after the running cycle finishes.

Examples:
  # Weekdays at 08:00
  patentspike watch --schedule "0 8 * * 1-5" --recipients ip-team@example.com

  # Hourly with metrics
  patentspike watch --schedule "@hourly" --metrics-addr :9464 --analysis-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := core.ExecuteWatch(ctx, cfg, cacheManager); err != nil {
			contract.LogFatal("Watch stopped", err)
		}
	},
}
