package schema

import "time"

// IPCTree counts patents by level1, level2 and level3 labels.
type IPCTree map[string]map[string]map[string]int

// Add increments the leaf for a node.
func (t IPCTree) Add(n IPCNode) {
	l2, ok := t[n.Level1]
	if !ok {
		l2 = make(map[string]map[string]int)
		t[n.Level1] = l2
	}
	l3, ok := l2[n.Level2]
	if !ok {
		l3 = make(map[string]int)
		l2[n.Level2] = l3
	}
	l3[n.Level3]++
}

// LabelCount is a label with its frequency, used for ranked distributions.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TrendPoint is the number of publications for a company in one month.
type TrendPoint struct {
	Month   string `json:"month"` // YYYY-MM
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// TreemapRow is one leaf of the company treemap. Path starts below the company.
type TreemapRow struct {
	Company string   `json:"company"`
	Path    []string `json:"path"`
	Count   int      `json:"count"`
}

// CompanyReport is everything derived for one applicant in one run.
type CompanyReport struct {
	Company          string         `json:"company"`
	Query            string         `json:"query"`
	TotalPatents     int            `json:"total_patents"`
	Buckets          map[string]int `json:"buckets"`
	Spikes           []SpikeAlert   `json:"spikes"`
	IPCDistribution  map[string]int `json:"ipc_distribution"`
	TechDistribution map[string]int `json:"tech_distribution"`
	TopIPC           []LabelCount   `json:"top_ipc"`
	IPCTree          IPCTree        `json:"ipc_tree"`
	SamplePatents    []Patent       `json:"sample_patents"`
	Patents          []Patent       `json:"-"`
}

// AnalysisReport is the combined result of one run over several companies.
type AnalysisReport struct {
	GeneratedAt    time.Time       `json:"generated_at"`
	PeriodMonths   int             `json:"period_months"`
	SpikeThreshold float64         `json:"spike_threshold"`
	Companies      []CompanyReport `json:"companies"`
}

// Overview holds the KPIs shown on the summary view.
type Overview struct {
	GeneratedAt     time.Time    `json:"generated_at"`
	PeriodMonths    int          `json:"period_months"`
	TotalPatents    int          `json:"total_patents"`
	StrategicSpikes int          `json:"strategic_spikes"`
	TopCompany      string       `json:"top_company"`
	CompanyCounts   []LabelCount `json:"company_counts"`
	Trend           []TrendPoint `json:"trend"`
}

// HeatmapRow is the spike ratio per category for one company.
type HeatmapRow struct {
	Company string             `json:"company"`
	Ratios  map[string]float64 `json:"ratios"`
}

// DashboardCompany is the per-company part of the sync document.
type DashboardCompany struct {
	Buckets map[string]int `json:"buckets"`
	Spikes  []SpikeAlert   `json:"spikes"`
	IPCTree IPCTree        `json:"ipc_tree"`
}

// DashboardPayload is the document pushed to the dashboard collections.
type DashboardPayload struct {
	GeneratedAt string                      `json:"generated_at"`
	Period      int                         `json:"period"`
	Companies   map[string]DashboardCompany `json:"companies"`
}

// CheckViolation is a Strategic Spike found by the check command.
type CheckViolation struct {
	Company       string  `json:"company"`
	Category      string  `json:"category"`
	SpikeRatioPct float64 `json:"spike_ratio_pct"`
}

// CheckResult is the outcome of a check run.
type CheckResult struct {
	Passed       bool             `json:"passed"`
	ThresholdPct float64          `json:"threshold_pct"`
	Companies    []string         `json:"companies"`
	TotalPatents int              `json:"total_patents"`
	Violations   []CheckViolation `json:"violations"`
}
