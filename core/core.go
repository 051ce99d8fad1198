// Package core has the orchestration of fetching, spike detection and reporting.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/semiconip/patentspike/core/algo"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/outwriter"
	"github.com/semiconip/patentspike/internal/prompt"
	"github.com/semiconip/patentspike/schema"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ErrCheckFailed is returned by ExecuteCheck when a Strategic Spike was found.
var ErrCheckFailed = errors.New("strategic spike detected")

// sourceFactory builds the patent source of a run. Tests replace it.
var sourceFactory = NewPatentSource

var ow = outwriter.NewOutWriter()

// analyze is the shared fetch and detect step of every fetch-based mode.
func analyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.AnalysisReport, int64, error) {
	source, err := sourceFactory(cfg)
	if err != nil {
		return schema.AnalysisReport{}, 0, err
	}
	return runAnalysis(ctx, cfg, mgr, source)
}

// ExecuteSpikes runs spike detection and prints the alerts of every company.
// It serves as the main entry point for the 'spikes' mode.
func ExecuteSpikes(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WriteSpikes(report, cfg, time.Since(start))
}

// ExecuteBuckets prints patent counts per period and company.
func ExecuteBuckets(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WriteBuckets(report, cfg, time.Since(start))
}

// ExecuteTreemap prints the technology treemap of the selected period.
func ExecuteTreemap(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WriteTreemap(TreemapRows(report, algo.TreemapView(cfg.Treemap)), cfg)
}

// ExecuteTrend prints monthly publication counts per company.
func ExecuteTrend(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WriteTrend(TrendPoints(report), cfg)
}

// ExecuteOverview prints the summary KPIs with the company ranking and trend.
func ExecuteOverview(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WriteOverview(BuildOverview(report), cfg, time.Since(start))
}

// ExecuteCompany prints the detail view of every selected company.
func ExecuteCompany(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	for _, r := range report.Companies {
		if err := ow.WriteCompany(r, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ExecutePatents prints the classified patents of the selected period.
func ExecutePatents(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WritePatents(ClassifyPatents(report), cfg)
}

// ExecuteHeatmap prints spike ratios as a company by category grid.
func ExecuteHeatmap(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WriteHeatmap(algo.Heatmap(report.Companies), algo.TechCategoryNames(), cfg)
}

// ExecuteCheck fails with ErrCheckFailed when any company has a Strategic Spike.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	result := BuildCheckResult(report)
	if err := ow.WriteCheck(result, cfg, time.Since(start)); err != nil {
		return err
	}
	if !result.Passed {
		return fmt.Errorf("%w: %d above %.0f%%", ErrCheckFailed, len(result.Violations), result.ThresholdPct)
	}
	return nil
}

// ExecuteCompanies prints the built-in company registry. It needs no patent source.
func ExecuteCompanies(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return ow.WriteCompanies(schema.Companies, cfg)
}

// ExecuteTiers prints the detection rules for the configured threshold.
func ExecuteTiers(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return ow.WriteTiers(BuildTiersModel(cfg.ThresholdPct, cfg.NewActivityTier), cfg)
}

// ExecutePrompt runs spike detection and prints the analyst agent prompt.
func ExecutePrompt(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	text, err := prompt.Build(report, cfg.Now())
	if err != nil {
		return err
	}
	return outwriter.WriteWithFile(cfg.OutputFile, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	}, "Wrote prompt")
}

// ExecuteAgentConfig prints the agent configuration, as JSON when --output json is set
// and as YAML otherwise. It needs no patent source.
func ExecuteAgentConfig(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	format := "yaml"
	if cfg.Output == schema.JSONOut {
		format = "json"
	}
	agent := prompt.NewAgentConfig(cfg.CompanyNames(), cfg.PeriodMonths, cfg.ThresholdPct)
	return outwriter.WriteWithFile(cfg.OutputFile, func(w io.Writer) error {
		return prompt.WriteAgentConfig(w, agent, format)
	}, "Wrote agent config")
}

// GetAnalysisReport runs the analysis and returns the report without rendering it.
func GetAnalysisReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.AnalysisReport, error) {
	report, _, err := analyze(ctx, cfg, mgr)
	return report, err
}
