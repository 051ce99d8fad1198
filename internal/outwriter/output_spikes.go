package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
)

// spikesJSON is the JSON document of the spikes view.
type spikesJSON struct {
	GeneratedAt    time.Time                   `json:"generated_at"`
	PeriodMonths   int                         `json:"period_months"`
	SpikeThreshold float64                     `json:"spike_threshold"`
	Spikes         []schema.EnrichedSpikeAlert `json:"spikes"`
}

var spikeCSVHeader = []string{
	"rank",
	"company",
	"category",
	"count_1m",
	"avg_11m",
	"spike_ratio_pct",
	"signal",
	"color",
	"blink",
}

// WriteSpikes outputs the spike alerts, dispatching based on the output format configured.
func WriteSpikes(report schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeSpikesJSON(w, report) },
		csvHeader: spikeCSVHeader,
		csvRows:   func(w *csv.Writer) error { return writeSpikesCSV(w, report) },
		text:      func(w io.Writer) error { return writeSpikesTable(w, report, cfg, duration) },
	})
}

func flattenSpikes(report schema.AnalysisReport) []schema.EnrichedSpikeAlert {
	out := []schema.EnrichedSpikeAlert{}
	for _, c := range report.Companies {
		out = append(out, schema.EnrichSpikes(c.Company, c.Spikes)...)
	}
	return out
}

func writeSpikesJSON(w io.Writer, report schema.AnalysisReport) error {
	return writeJSON(w, spikesJSON{
		GeneratedAt:    report.GeneratedAt,
		PeriodMonths:   report.PeriodMonths,
		SpikeThreshold: report.SpikeThreshold,
		Spikes:         flattenSpikes(report),
	})
}

func writeSpikesCSV(w *csv.Writer, report schema.AnalysisReport) error {
	fmtFloat := floatFormatter(1)
	for _, a := range flattenSpikes(report) {
		rec := []string{
			strconv.Itoa(a.Rank),
			a.Company,
			a.Category,
			strconv.Itoa(a.Count1M),
			fmtFloat(a.Avg11M),
			fmtFloat(a.SpikeRatioPct),
			string(a.Signal),
			a.Color,
			strconv.FormatBool(a.Blink),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeSpikesTable prints one table per company followed by a tier summary.
func writeSpikesTable(w io.Writer, report schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := floatFormatter(1)
	var strategic, emerging int
	for _, c := range report.Companies {
		if _, err := fmt.Fprintf(w, "\n%s (%d patents, threshold %.0f%%)\n", c.Company, c.TotalPatents, report.SpikeThreshold); err != nil {
			return err
		}
		if len(c.Spikes) == 0 {
			if _, err := fmt.Fprintln(w, "No category published in the most recent month."); err != nil {
				return err
			}
			continue
		}
		strategic += schema.CountSignal(c.Spikes, schema.StrategicSpike)
		emerging += schema.CountSignal(c.Spikes, schema.EmergingSignal)

		table := newTable(w, "Rank", "Category", "1M", "11M Avg", "Ratio %", "Signal")
		var data [][]string
		for i, a := range c.Spikes {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				a.Category,
				strconv.Itoa(a.Count1M),
				fmtFloat(a.Avg11M),
				fmtFloat(a.SpikeRatioPct),
				signalLabel(cfg, a.Signal),
			})
		}
		if err := renderTable(table, data); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\n%d Strategic Spikes, %d Emerging Signals\n", strategic, emerging); err != nil {
		return err
	}
	return writeFooter(w, cfg, len(report.Companies), duration)
}

// WriteHeatmap outputs spike ratios per company with categories as columns.
func WriteHeatmap(rows []schema.HeatmapRow, categories []string, cfg *contract.Config) error {
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeJSON(w, rows) },
		csvHeader: []string{"company", "category", "spike_ratio_pct"},
		csvRows:   func(w *csv.Writer) error { return writeHeatmapCSV(w, rows, categories) },
		text:      func(w io.Writer) error { return writeHeatmapTable(w, rows, categories, cfg) },
	})
}

func writeHeatmapCSV(w *csv.Writer, rows []schema.HeatmapRow, categories []string) error {
	fmtFloat := floatFormatter(1)
	for _, r := range rows {
		for _, cat := range categories {
			if err := w.Write([]string{r.Company, cat, fmtFloat(r.Ratios[cat])}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHeatmapTable(w io.Writer, rows []schema.HeatmapRow, categories []string, cfg *contract.Config) error {
	fmtFloat := floatFormatter(1)
	table := newTable(w, append([]string{"Company"}, categories...)...)
	var data [][]string
	for _, r := range rows {
		row := []string{r.Company}
		for _, cat := range categories {
			row = append(row, heatCell(fmtFloat(r.Ratios[cat]), r.Ratios[cat], cfg))
		}
		data = append(data, row)
	}
	return renderTable(table, data)
}

// heatCell colors a ratio by the tier it would fall into.
func heatCell(text string, ratio float64, cfg *contract.Config) string {
	if !cfg.UseColors {
		return text
	}
	switch {
	case ratio >= cfg.ThresholdPct:
		return contract.SpikeColor.Sprint(text)
	case ratio >= schema.EmergingSignalPct:
		return contract.EmergingColor.Sprint(text)
	default:
		return text
	}
}

// WriteCheck outputs the check result.
func WriteCheck(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeJSON(w, result) },
		csvHeader: []string{"company", "category", "spike_ratio_pct"},
		csvRows:   func(w *csv.Writer) error { return writeCheckCSV(w, result) },
		text:      func(w io.Writer) error { return writeCheckText(w, result, cfg, duration) },
	})
}

func writeCheckCSV(w *csv.Writer, result schema.CheckResult) error {
	fmtFloat := floatFormatter(1)
	for _, v := range result.Violations {
		if err := w.Write([]string{v.Company, v.Category, fmtFloat(v.SpikeRatioPct)}); err != nil {
			return err
		}
	}
	return nil
}

func writeCheckText(w io.Writer, result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := floatFormatter(1)
	if result.Passed {
		if _, err := fmt.Fprintf(w, "✅ No Strategic Spike above %.0f%% across %d patents\n", result.ThresholdPct, result.TotalPatents); err != nil {
			return err
		}
		return writeFooter(w, cfg, len(result.Companies), duration)
	}
	if _, err := fmt.Fprintf(w, "❌ %d Strategic Spikes above %.0f%%\n", len(result.Violations), result.ThresholdPct); err != nil {
		return err
	}
	table := newTable(w, "Company", "Category", "Ratio %")
	var data [][]string
	for _, v := range result.Violations {
		data = append(data, []string{v.Company, v.Category, fmtFloat(v.SpikeRatioPct)})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	return writeFooter(w, cfg, len(result.Companies), duration)
}
