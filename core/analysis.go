package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/semiconip/patentspike/core/algo"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
)

// headerWriter receives the run header. Stdout is kept for the rendered result.
var headerWriter io.Writer = os.Stderr

// logAnalysisHeader prints a concise, 2-line header for each run.
func logAnalysisHeader(cfg *contract.Config, now time.Time) {
	start, end := fetchWindow(now)
	source := "KIPRIS"
	if cfg.InputFile != "" {
		source = cfg.InputFile
	}
	_, _ = fmt.Fprintf(headerWriter, "🔎 Companies: %s (Source: %s)\n", strings.Join(cfg.CompanyNames(), ", "), source)
	_, _ = fmt.Fprintf(headerWriter, "📅 Range: %s → %s (Period: %d months)\n",
		start.Format(contract.AsOfFormat), end.Format(contract.AsOfFormat), cfg.PeriodMonths)
}

// spikeOptions maps the configuration onto the detector options.
func spikeOptions(cfg *contract.Config) algo.SpikeOptions {
	return algo.SpikeOptions{ThresholdPct: cfg.ThresholdPct, NewActivityTier: cfg.NewActivityTier}
}

// runAnalysis fetches every configured company and builds the report, tracking the run
// in the analysis store when one is configured. The returned id is 0 for untracked runs.
func runAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, source contract.PatentSource) (schema.AnalysisReport, int64, error) {
	now := cfg.Now()
	if !shouldSuppressHeader(ctx) {
		logAnalysisHeader(cfg, now)
	}

	// --- 0. Begin Analysis Tracking (if configured) ---
	var analysisStore contract.AnalysisStore
	if mgr != nil {
		analysisStore = mgr.GetAnalysisStore()
	}
	var analysisID int64
	if analysisStore != nil {
		id, err := analysisStore.BeginAnalysis(time.Now(), cfg.ConfigParams())
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else {
			analysisID = id
		}
	}

	// --- 1. Fetch Phase (with caching) ---
	fetched, err := fetchAll(ctx, cfg, source, mgr, now)
	if err != nil {
		return schema.AnalysisReport{}, 0, err
	}

	// --- 2. Detection ---
	report := BuildAnalysisReport(cfg.Companies, fetched, now, cfg.PeriodMonths, spikeOptions(cfg))

	// --- 3. End Analysis Tracking ---
	if analysisStore != nil && analysisID > 0 {
		recordSpikeAlerts(analysisStore, analysisID, report)
		totalSpikes := TotalSignals(report, schema.StrategicSpike)
		if err := analysisStore.EndAnalysis(analysisID, time.Now(), TotalPatents(report), totalSpikes); err != nil {
			contract.LogWarn("Failed to finalize analysis tracking", err)
		}
	}
	return report, analysisID, nil
}

// recordSpikeAlerts stores every alert of a run.
func recordSpikeAlerts(store contract.AnalysisStore, analysisID int64, report schema.AnalysisReport) {
	for _, r := range report.Companies {
		for _, s := range r.Spikes {
			if err := store.RecordSpikeAlert(analysisID, r.Company, report.GeneratedAt, s); err != nil {
				contract.LogWarn(fmt.Sprintf("Analysis tracking failed for RecordSpikeAlert on %s", r.Company), err)
			}
		}
	}
}
