// Package schema has models, constants and shared tables for all parts of patentspike.
package schema

// Patent is one published patent as returned by the KIPRIS word search.
// Records are never mutated after parsing.
type Patent struct {
	ApplicationNumber string `json:"applicationNumber"`
	InventionTitle    string `json:"inventionTitle"`
	ApplicantName     string `json:"applicantName"`
	OpenDate          string `json:"openDate"`        // YYYYMMDD, required for any date-based analysis
	ApplicationDate   string `json:"applicationDate"` // YYYYMMDD, optional
	IPCNumber         string `json:"ipcNumber"`       // semicolon-delimited, only the first code is used
	RegisterStatus    string `json:"registerStatus"`
	Abstract          string `json:"abstract"`
}

// IPCNode is the three-level technology hierarchy derived from an IPC code.
type IPCNode struct {
	Level1 string `json:"level1"`
	Level2 string `json:"level2"`
	Level3 string `json:"level3"`
}

// SpikeAlert is the surge signal for one technology category.
type SpikeAlert struct {
	Category      string  `json:"category"`
	Count1M       int     `json:"count_1m"`
	Avg11M        float64 `json:"avg_11m"`
	SpikeRatioPct float64 `json:"spike_ratio_pct"`
	Signal        Signal  `json:"signal"`
	Color         string  `json:"color"`
	Blink         bool    `json:"blink"`
}

// Period is a recency window ending at the analysis time.
type Period struct {
	Label  string
	Months int
}

// PeriodBuckets maps a period label to the patents published inside that window.
// Buckets are cumulative: a patent in the 1개월 bucket is also in every wider one.
type PeriodBuckets map[string][]Patent

// Counts returns the number of patents per period label.
func (b PeriodBuckets) Counts() map[string]int {
	counts := make(map[string]int, len(b))
	for _, p := range Periods {
		counts[p.Label] = len(b[p.Label])
	}
	return counts
}
