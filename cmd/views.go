package cmd

import (
	"github.com/semiconip/patentspike/core"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/spf13/cobra"
)

// runExecutor adapts a core executor to a cobra Run function that exits on failure.
func runExecutor(fn core.ExecutorFunc, failMsg string) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := fn(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal(failMsg, err)
		}
	}
}

// spikesCmd prints the spike alerts of every selected company.
var spikesCmd = &cobra.Command{
	Use:   "spikes",
	Short: "Show the technology categories whose filings spiked last month.",
	Long: `Fetch the last 12 months of publications for each company and compare the most
recent month of every technology category against its 11-month average.

Tiers:
- Strategic Spike - ratio at or above --threshold (default 200%)
- Emerging Signal - ratio at or above 150%
- New Activity    - recent filings with no history (only with --new-activity-tier)
- Normal          - everything else

Examples:
  # Default companies with the default threshold
  patentspike spikes

  # Stricter threshold for two companies
  patentspike spikes --companies 삼성전자,TSMC --threshold 300

  # Reproduce an earlier run from a saved file of records
  patentspike spikes --input patents.json --as-of 2025-06-15 --output json`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteSpikes, "Cannot run spike detection"),
}

// bucketsCmd prints per-period publication counts.
var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Show publication counts for the 1, 3, 6 and 12 month windows.",
	Long: `Group each company's publications into cumulative windows ending today.
A patent published last week counts toward every window.

Examples:
  patentspike buckets
  patentspike buckets --companies SK하이닉스 --output csv`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteBuckets, "Cannot compute period buckets"),
}

// treemapCmd prints the company hierarchy as flat treemap rows.
var treemapCmd = &cobra.Command{
	Use:   "treemap",
	Short: "Show the IPC or technology hierarchy of the selected period.",
	Long: `Flatten the selected period into company > section > class > subclass rows (--treemap ipc)
or company > section > technology rows (--treemap tech), sorted by count.

Examples:
  patentspike treemap --period 6
  patentspike treemap --treemap tech --output json`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteTreemap, "Cannot build treemap"),
}

// trendCmd prints the category trend lines.
var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show monthly publication counts per technology category.",
	Long: `Count publications per month and technology category inside the selected period.

Examples:
  patentspike trend --period 12 --output csv --output-file trend.csv`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteTrend, "Cannot build trend"),
}

// overviewCmd prints the headline numbers.
var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show headline totals across all selected companies.",
	Long: `Summarize the selected period: total publications, the most active company,
and how many Strategic Spikes and Emerging Signals were found.

Examples:
  patentspike overview
  patentspike overview --period 3 --threshold 250`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteOverview, "Cannot build overview"),
}

// companyCmd prints the detail report of each selected company.
var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show the full report of each selected company.",
	Long: `Print per-company detail: technology and IPC distributions, the top IPC codes,
sample publications and the spike table.

Examples:
  patentspike company --companies 삼성전자
  patentspike company --companies TSMC --period 6 --output json`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteCompany, "Cannot build company report"),
}

// patentsCmd prints the classified patent list.
var patentsCmd = &cobra.Command{
	Use:   "patents",
	Short: "List publications with their IPC and technology classification.",
	Long: `List the publications of the selected period, newest first, with the classified
IPC hierarchy and technology category of each record.

Parquet output requires --output-file.

Examples:
  patentspike patents --limit 20
  patentspike patents --output parquet --output-file patents.parquet
  patentspike patents --input patents.json --companies 삼성전자`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecutePatents, "Cannot list patents"),
}

// heatmapCmd prints the company by category ratio matrix.
var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Show spike ratios as a company by category matrix.",
	Long: `Print one row per company and category with its spike ratio, for comparing
companies side by side.

Examples:
  patentspike heatmap --companies 삼성전자,SK하이닉스,TSMC,Intel`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteHeatmap, "Cannot build heatmap"),
}
