// Package cmd defines the command-line interface for patentspike.
package cmd

import (
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlags binds a flag set to Viper and exits when binding fails.
func bindFlags(name string, flags *pflag.FlagSet) {
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding "+name+" flags", err)
	}
}

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Analysis views
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(spikesCmd)
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(treemapCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(patentsCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(checkCmd)

	// Informational commands
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(tiersCmd)
	rootCmd.AddCommand(versionCmd)

	// Agent and delivery commands
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(agentConfigCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(emailCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)

	// Storage management
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	pf := rootCmd.PersistentFlags()
	pf.StringSliceP("companies", "c", schema.DefaultCompanies, "Comma-separated company names (registry names or raw KIPRIS search words)")
	pf.IntP("period", "p", contract.DefaultPeriodMonths, "Analysis period in months: 1, 3, 6 or 12")
	pf.Float64P("threshold", "t", schema.DefaultThresholdPct, "Strategic Spike threshold in percent (100 to 500)")
	pf.Bool("new-activity-tier", false, "Flag categories with recent filings and no history as New Activity")
	pf.Int("max-pages", contract.DefaultMaxPages, "Maximum KIPRIS result pages per company (100 records each)")
	pf.String("as-of", "", "Analyze as of this date (YYYY-MM-DD) instead of today")
	pf.String("input", "", "Read patent records from a JSON file instead of KIPRIS")
	pf.IntP("limit", "l", contract.DefaultResultLimit, "Number of rows to display")
	pf.Int("workers", contract.DefaultWorkers, "Number of companies fetched concurrently")
	pf.String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	pf.String("output-file", "", "Optional path to write output to")
	pf.Int("width", 0, "Terminal width override (0 = auto-detect)")
	pf.String("kipris-api-key", "", "KIPRIS Plus API key (prefer the KIPRIS_API_KEY env variable)")
	pf.String("kipris-base-url", "", "Override the KIPRIS search endpoint")
	pf.String("request-timeout", contract.DefaultRequestTimeout.String(), "Timeout of each KIPRIS request")
	pf.String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or redis or none")
	pf.String("cache-db-connect", "", "Cache connection string for mysql/postgresql/redis (e.g., redis://localhost:6379/0)")
	pf.String("cache-ttl", contract.DefaultCacheTTL.String(), "How long cached KIPRIS results stay valid")
	pf.String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	pf.String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	pf.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	pf.String("emoji", "yes", "Enable emojis in signal labels (yes/no/true/false/1/0)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	pf.String("config", "", "Path to config file")
	bindFlags("root", pf)

	// Command flags are bound in sharedSetup, once the running command is known,
	// since several commands share keys such as dry-run.
	treemapCmd.Flags().String("treemap", "ipc", "Treemap hierarchy: ipc or tech")

	syncCmd.Flags().String("sync-file", contract.DefaultSyncFile, "Path of the dashboard JSON file")
	syncCmd.Flags().Bool("dry-run", false, "Print the documents without writing them")

	for _, c := range []*cobra.Command{emailCmd, watchCmd} {
		c.Flags().String("recipients", "", "Comma-separated alert recipients")
		c.Flags().Bool("dry-run", false, "Print the HTML alerts instead of sending them")
		c.Flags().String("smtp-host", "", "SMTP server host (env SMTP_HOST)")
		c.Flags().String("smtp-port", "", "SMTP server port (env SMTP_PORT, default 587)")
		c.Flags().String("smtp-user", "", "SMTP user and sender address (env ALERT_EMAIL)")
		c.Flags().String("smtp-password", "", "SMTP password (env ALERT_EMAIL_PASSWORD)")
	}

	watchCmd.Flags().String("schedule", contract.DefaultSchedule, "Cron schedule of the analysis (5 fields or @every/@hourly descriptors)")
	watchCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	bindFlags("analysis migrate", analysisMigrateCmd.Flags())
}
