package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/semiconip/patentspike/core/algo"
	"github.com/semiconip/patentspike/schema"
)

// Report sizing.
const (
	samplePatents = 5
	topIPCCodes   = 10
)

// periodLabel returns the bucket label of a period in months. Unknown values map to the widest period.
func periodLabel(months int) string {
	for _, p := range schema.Periods {
		if p.Months == months {
			return p.Label
		}
	}
	return schema.Periods[len(schema.Periods)-1].Label
}

// BuildCompanyReport derives every view of one company from its fetched patents.
//
// Spikes and buckets always use the full fetch window. Distributions, the IPC tree and the
// patent list are scoped to the selected period.
func BuildCompanyReport(company schema.Company, patents []schema.Patent, now time.Time, periodMonths int, opts algo.SpikeOptions) schema.CompanyReport {
	buckets := algo.BucketByPeriod(patents, now)
	scoped := buckets[periodLabel(periodMonths)]

	samples := patents
	if len(samples) > samplePatents {
		samples = samples[:samplePatents]
	}

	return schema.CompanyReport{
		Company:          company.Name,
		Query:            company.Query,
		TotalPatents:     len(scoped),
		Buckets:          buckets.Counts(),
		Spikes:           algo.DetectSpikes(patents, now, opts),
		IPCDistribution:  algo.IPCDistribution(scoped),
		TechDistribution: algo.TechDistribution(scoped),
		TopIPC:           algo.TopIPCCodes(scoped, topIPCCodes),
		IPCTree:          algo.BuildIPCTree(scoped),
		SamplePatents:    append([]schema.Patent(nil), samples...),
		Patents:          scoped,
	}
}

// BuildAnalysisReport builds the reports of all companies, in the order given.
// fetched[i] holds the patents of companies[i].
func BuildAnalysisReport(companies []schema.Company, fetched [][]schema.Patent, now time.Time, periodMonths int, opts algo.SpikeOptions) schema.AnalysisReport {
	if opts.ThresholdPct <= 0 {
		opts.ThresholdPct = schema.DefaultThresholdPct
	}
	report := schema.AnalysisReport{
		GeneratedAt:    now,
		PeriodMonths:   periodMonths,
		SpikeThreshold: opts.ThresholdPct,
		Companies:      make([]schema.CompanyReport, len(companies)),
	}
	for i, c := range companies {
		var patents []schema.Patent
		if i < len(fetched) {
			patents = fetched[i]
		}
		report.Companies[i] = BuildCompanyReport(c, patents, now, periodMonths, opts)
	}
	return report
}

// TotalPatents sums the period-scoped patents of all companies.
func TotalPatents(report schema.AnalysisReport) int {
	total := 0
	for _, r := range report.Companies {
		total += r.TotalPatents
	}
	return total
}

// TotalSignals counts the alerts of one tier across all companies.
func TotalSignals(report schema.AnalysisReport, s schema.Signal) int {
	total := 0
	for _, r := range report.Companies {
		total += schema.CountSignal(r.Spikes, s)
	}
	return total
}

// TrendPoints concatenates the monthly publication counts of every company within the period.
func TrendPoints(report schema.AnalysisReport) []schema.TrendPoint {
	var points []schema.TrendPoint
	for _, r := range report.Companies {
		points = append(points, algo.MonthlyTrend(r.Company, r.Patents, report.GeneratedAt, report.PeriodMonths)...)
	}
	return points
}

// BuildOverview computes the summary KPIs of a run.
func BuildOverview(report schema.AnalysisReport) schema.Overview {
	counts := make(map[string]int, len(report.Companies))
	for _, r := range report.Companies {
		counts[r.Company] = r.TotalPatents
	}
	ranked := schema.SortedCounts(counts)

	topCompany := ""
	if len(ranked) > 0 && ranked[0].Count > 0 {
		topCompany = ranked[0].Label
	}
	return schema.Overview{
		GeneratedAt:     report.GeneratedAt,
		PeriodMonths:    report.PeriodMonths,
		TotalPatents:    TotalPatents(report),
		StrategicSpikes: TotalSignals(report, schema.StrategicSpike),
		TopCompany:      topCompany,
		CompanyCounts:   ranked,
		Trend:           TrendPoints(report),
	}
}

// TreemapRows builds the treemap leaves of every company, largest first.
func TreemapRows(report schema.AnalysisReport, view algo.TreemapView) []schema.TreemapRow {
	var rows []schema.TreemapRow
	for _, r := range report.Companies {
		rows = append(rows, algo.BuildTreemapRows(r.Company, r.Patents, view)...)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// ClassifyPatents labels every period-scoped patent, newest publication first.
func ClassifyPatents(report schema.AnalysisReport) []schema.ClassifiedPatent {
	var out []schema.ClassifiedPatent
	for _, r := range report.Companies {
		for _, p := range r.Patents {
			out = append(out, schema.ClassifiedPatent{
				Company:      r.Company,
				TechCategory: algo.ClassifyTech(p.InventionTitle, p.Abstract),
				IPC:          algo.ClassifyIPC(p.IPCNumber),
				Patent:       p,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OpenDate > out[j].OpenDate })
	return out
}

// BuildDashboardPayload shapes a run into the document stored in the dashboard_trends collection.
func BuildDashboardPayload(report schema.AnalysisReport) schema.DashboardPayload {
	payload := schema.DashboardPayload{
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Period:      report.PeriodMonths,
		Companies:   make(map[string]schema.DashboardCompany, len(report.Companies)),
	}
	for _, r := range report.Companies {
		spikes := r.Spikes
		if spikes == nil {
			spikes = []schema.SpikeAlert{}
		}
		payload.Companies[r.Company] = schema.DashboardCompany{
			Buckets: r.Buckets,
			Spikes:  spikes,
			IPCTree: r.IPCTree,
		}
	}
	return payload
}

// BuildCheckResult lists every Strategic Spike of a run. The check passes when there is none.
func BuildCheckResult(report schema.AnalysisReport) schema.CheckResult {
	result := schema.CheckResult{
		ThresholdPct: report.SpikeThreshold,
		TotalPatents: TotalPatents(report),
		Violations:   []schema.CheckViolation{},
	}
	for _, r := range report.Companies {
		result.Companies = append(result.Companies, r.Company)
		for _, s := range r.Spikes {
			if s.Signal != schema.StrategicSpike {
				continue
			}
			result.Violations = append(result.Violations, schema.CheckViolation{
				Company:       r.Company,
				Category:      s.Category,
				SpikeRatioPct: s.SpikeRatioPct,
			})
		}
	}
	result.Passed = len(result.Violations) == 0
	return result
}

// BuildTiersModel describes the detection rules for the tiers command.
func BuildTiersModel(thresholdPct float64, newActivity bool) schema.TiersRenderModel {
	tiers := []schema.TierDefinition{
		{
			Signal:    schema.StrategicSpike,
			Condition: fmt.Sprintf("ratio >= %.0f%%", thresholdPct),
			Color:     schema.StrategicSpikeColor,
			Blink:     true,
		},
		{
			Signal:    schema.EmergingSignal,
			Condition: fmt.Sprintf("%.0f%% <= ratio < %.0f%%", schema.EmergingSignalPct, thresholdPct),
			Color:     schema.EmergingSignalColor,
		},
	}
	if newActivity {
		tiers = append(tiers, schema.TierDefinition{
			Signal:    schema.NewActivity,
			Condition: "recent publications with no history",
			Color:     schema.NewActivityColor,
		})
	}
	tiers = append(tiers, schema.TierDefinition{
		Signal:    schema.NormalSignal,
		Condition: "anything else",
		Color:     schema.NormalColor,
	})

	periods := make([]string, len(schema.Periods))
	for i, p := range schema.Periods {
		periods[i] = p.Label
	}
	return schema.TiersRenderModel{
		Title:        "Spike Detection Rules",
		Description:  "Publications of the most recent month compared per technology category.",
		Formula:      "ratio = count(last month) / (count(previous 11 months) / 11) × 100",
		ThresholdPct: thresholdPct,
		Tiers:        tiers,
		Categories:   algo.CategoryDefinitions(),
		Periods:      periods,
	}
}
