package core

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/metrics"
	"github.com/semiconip/patentspike/schema"
)

// fixedNow anchors every time-dependent test.
var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) string {
	return fixedNow.AddDate(0, 0, -n).Format("20060102")
}

// series returns recent publications in the last month followed by older ones
// spread over the eleven months before it.
func series(title, ipc string, recent, older int) []schema.Patent {
	var out []schema.Patent
	for i := range recent {
		out = append(out, schema.Patent{InventionTitle: title, OpenDate: daysAgo(1 + i*3), IPCNumber: ipc})
	}
	step := 0
	if older > 1 {
		step = 300 / (older - 1)
	}
	for i := range older {
		out = append(out, schema.Patent{InventionTitle: title, OpenDate: daysAgo(45 + i*step), IPCNumber: ipc})
	}
	return out
}

// samsungPatents has one Strategic Spike (HBM, 600%) and one undated record.
func samsungPatents() []schema.Patent {
	out := series("HBM 적층 메모리", "H01L25/065", 6, 11)
	return append(out, schema.Patent{InventionTitle: "공개일 없음"})
}

// hynixPatents has one Emerging Signal (EUV, 150%).
func hynixPatents() []schema.Patent {
	return series("EUV 노광 장치", "G03F7/20", 3, 22)
}

// fakeSource serves fixed records per query and counts calls.
type fakeSource struct {
	mu      sync.Mutex
	records map[string][]schema.Patent
	errs    map[string]error
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		records: map[string][]schema.Patent{
			"삼성전자":   samsungPatents(),
			"SK하이닉스": hynixPatents(),
		},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeSource) SearchPatents(ctx context.Context, query string, _, _ time.Time, _ int) ([]schema.Patent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[query]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.records[query], nil
}

var errUpstream = errors.New("upstream unavailable")

// testConfig returns a validated-looking config pinned to fixedNow.
func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	samsung, _ := schema.LookupCompany("삼성전자")
	hynix, _ := schema.LookupCompany("SK하이닉스")
	dir := t.TempDir()
	return &contract.Config{
		Companies:    []schema.Company{samsung, hynix},
		PeriodMonths: 12,
		ThresholdPct: schema.DefaultThresholdPct,
		MaxPages:     contract.DefaultMaxPages,
		Workers:      2,
		ResultLimit:  contract.DefaultResultLimit,
		AsOf:         fixedNow,
		Output:       schema.JSONOut,
		OutputFile:   filepath.Join(dir, "out"),
		Treemap:      "ipc",
		CacheTTL:     contract.DefaultCacheTTL,
		SyncFile:     filepath.Join(dir, "sync.json"),
	}
}

// useSource swaps the patent source for the duration of a test.
func useSource(t *testing.T, src contract.PatentSource) {
	t.Helper()
	prev := sourceFactory
	sourceFactory = func(*contract.Config) (contract.PatentSource, error) { return src, nil }
	t.Cleanup(func() { sourceFactory = prev })
}

// counterValue sums the samples of a metric family whose labels include value.
func counterValue(t *testing.T, m *metrics.Metrics, name, value string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if slices.ContainsFunc(metric.GetLabel(), func(l *dto.LabelPair) bool { return l.GetValue() == value }) {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total
}
