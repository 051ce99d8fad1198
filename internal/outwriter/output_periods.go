package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
)

// bucketJSON is one company in the buckets view.
type bucketJSON struct {
	Company string         `json:"company"`
	Buckets map[string]int `json:"buckets"`
}

// WriteBuckets outputs cumulative period counts per company.
func WriteBuckets(report schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeBucketsJSON(w, report) },
		csvHeader: []string{"company", "period", "count"},
		csvRows:   func(w *csv.Writer) error { return writeBucketsCSV(w, report) },
		text:      func(w io.Writer) error { return writeBucketsTable(w, report, cfg, duration) },
	})
}

func writeBucketsJSON(w io.Writer, report schema.AnalysisReport) error {
	out := make([]bucketJSON, len(report.Companies))
	for i, c := range report.Companies {
		out[i] = bucketJSON{Company: c.Company, Buckets: c.Buckets}
	}
	return writeJSON(w, out)
}

func writeBucketsCSV(w *csv.Writer, report schema.AnalysisReport) error {
	for _, c := range report.Companies {
		for _, p := range schema.Periods {
			if err := w.Write([]string{c.Company, p.Label, strconv.Itoa(c.Buckets[p.Label])}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeBucketsTable(w io.Writer, report schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	headers := []string{"Company"}
	for _, p := range schema.Periods {
		label := p.Label
		if p.Months == report.PeriodMonths {
			label += " *"
		}
		headers = append(headers, label)
	}
	table := newTable(w, headers...)
	var data [][]string
	for _, c := range report.Companies {
		row := []string{c.Company}
		for _, p := range schema.Periods {
			row = append(row, strconv.Itoa(c.Buckets[p.Label]))
		}
		data = append(data, row)
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	return writeFooter(w, cfg, len(report.Companies), duration)
}

// WriteTrend outputs monthly publication counts, one column per company in text mode.
func WriteTrend(points []schema.TrendPoint, cfg *contract.Config) error {
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeJSON(w, points) },
		csvHeader: []string{"month", "company", "count"},
		csvRows:   func(w *csv.Writer) error { return writeTrendCSV(w, points) },
		text:      func(w io.Writer) error { return writeTrendTable(w, points) },
	})
}

func writeTrendCSV(w *csv.Writer, points []schema.TrendPoint) error {
	for _, p := range points {
		if err := w.Write([]string{p.Month, p.Company, strconv.Itoa(p.Count)}); err != nil {
			return err
		}
	}
	return nil
}

// pivotTrend turns trend points into sorted months, companies in first-seen order and a count lookup.
func pivotTrend(points []schema.TrendPoint) (months, companies []string, counts map[[2]string]int) {
	counts = make(map[[2]string]int, len(points))
	seenMonth := make(map[string]bool)
	seenCompany := make(map[string]bool)
	for _, p := range points {
		counts[[2]string{p.Month, p.Company}] += p.Count
		if !seenMonth[p.Month] {
			seenMonth[p.Month] = true
			months = append(months, p.Month)
		}
		if !seenCompany[p.Company] {
			seenCompany[p.Company] = true
			companies = append(companies, p.Company)
		}
	}
	sort.Strings(months)
	return months, companies, counts
}

func writeTrendTable(w io.Writer, points []schema.TrendPoint) error {
	if len(points) == 0 {
		_, err := fmt.Fprintln(w, "No dated publications in the selected period.")
		return err
	}
	months, companies, counts := pivotTrend(points)
	table := newTable(w, append([]string{"Month"}, companies...)...)
	var data [][]string
	for _, m := range months {
		row := []string{m}
		for _, c := range companies {
			row = append(row, strconv.Itoa(counts[[2]string{m, c}]))
		}
		data = append(data, row)
	}
	return renderTable(table, data)
}

// WriteOverview outputs the summary KPIs with per-company volume and trend.
func WriteOverview(overview schema.Overview, cfg *contract.Config, duration time.Duration) error {
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeJSON(w, overview) },
		csvHeader: []string{"metric", "value"},
		csvRows:   func(w *csv.Writer) error { return writeOverviewCSV(w, overview) },
		text:      func(w io.Writer) error { return writeOverviewText(w, overview, cfg, duration) },
	})
}

func writeOverviewCSV(w *csv.Writer, o schema.Overview) error {
	rows := [][]string{
		{"generated_at", o.GeneratedAt.Format(time.RFC3339)},
		{"period_months", strconv.Itoa(o.PeriodMonths)},
		{"total_patents", strconv.Itoa(o.TotalPatents)},
		{"strategic_spikes", strconv.Itoa(o.StrategicSpikes)},
		{"top_company", o.TopCompany},
	}
	for _, c := range o.CompanyCounts {
		rows = append(rows, []string{"patents:" + c.Label, strconv.Itoa(c.Count)})
	}
	return w.WriteAll(rows)
}

func writeOverviewText(w io.Writer, o schema.Overview, cfg *contract.Config, duration time.Duration) error {
	top := o.TopCompany
	if top == "" {
		top = "-"
	}
	if _, err := fmt.Fprintf(w, "Patent overview (last %d months, as of %s)\n", o.PeriodMonths, o.GeneratedAt.Format(contract.AsOfFormat)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  Total patents:    %d\n  Strategic Spikes: %d\n  Most active:      %s\n\n",
		o.TotalPatents, o.StrategicSpikes, top); err != nil {
		return err
	}
	table := newTable(w, "Company", "Patents")
	var data [][]string
	for _, c := range o.CompanyCounts {
		data = append(data, []string{c.Label, strconv.Itoa(c.Count)})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	if len(o.Trend) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := writeTrendTable(w, o.Trend); err != nil {
			return err
		}
	}
	return writeFooter(w, cfg, len(o.CompanyCounts), duration)
}
