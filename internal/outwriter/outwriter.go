// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSpikes prints the spike alerts of every company.
func (ow *OutWriter) WriteSpikes(report schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return WriteSpikes(report, cfg, duration)
}

// WriteBuckets prints patent counts per period and company.
func (ow *OutWriter) WriteBuckets(report schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return WriteBuckets(report, cfg, duration)
}

// WriteTreemap prints treemap leaves.
func (ow *OutWriter) WriteTreemap(rows []schema.TreemapRow, cfg *contract.Config) error {
	return WriteTreemap(rows, cfg)
}

// WriteTrend prints monthly publication counts.
func (ow *OutWriter) WriteTrend(points []schema.TrendPoint, cfg *contract.Config) error {
	return WriteTrend(points, cfg)
}

// WriteOverview prints the summary KPIs.
func (ow *OutWriter) WriteOverview(overview schema.Overview, cfg *contract.Config, duration time.Duration) error {
	return WriteOverview(overview, cfg, duration)
}

// WriteCompany prints the detail view of one company.
func (ow *OutWriter) WriteCompany(report schema.CompanyReport, cfg *contract.Config) error {
	return WriteCompany(report, cfg)
}

// WritePatents prints the classified patent list.
func (ow *OutWriter) WritePatents(patents []schema.ClassifiedPatent, cfg *contract.Config) error {
	return WritePatents(patents, cfg)
}

// WriteCompanies prints the company registry.
func (ow *OutWriter) WriteCompanies(companies []schema.Company, cfg *contract.Config) error {
	return WriteCompanies(companies, cfg)
}

// WriteTiers prints the detection rules.
func (ow *OutWriter) WriteTiers(model schema.TiersRenderModel, cfg *contract.Config) error {
	return WriteTiers(model, cfg)
}

// WriteHeatmap prints spike ratios per company and category.
func (ow *OutWriter) WriteHeatmap(rows []schema.HeatmapRow, categories []string, cfg *contract.Config) error {
	return WriteHeatmap(rows, categories, cfg)
}

// WriteCheck prints the check outcome.
func (ow *OutWriter) WriteCheck(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCheck(result, cfg, duration)
}

// GetMaxTitleWidth calculates the maximum width for invention titles in table output
// based on terminal width.
func GetMaxTitleWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Date + IPC + Category + Status with borders/padding
	baseWidth := 75

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 80 {
		return 80
	}
	return available
}
