package core

import (
	"context"
	"testing"

	"github.com/semiconip/patentspike/core/algo"
	"github.com/semiconip/patentspike/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport(t *testing.T) schema.AnalysisReport {
	t.Helper()
	cfg := testConfig(t)
	fetched := [][]schema.Patent{samsungPatents(), hynixPatents()}
	return BuildAnalysisReport(cfg.Companies, fetched, fixedNow, cfg.PeriodMonths, spikeOptions(cfg))
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "1개월", periodLabel(1))
	assert.Equal(t, "6개월", periodLabel(6))
	assert.Equal(t, "12개월", periodLabel(12))
	assert.Equal(t, "12개월", periodLabel(7))
}

func TestBuildCompanyReport(t *testing.T) {
	samsung, _ := schema.LookupCompany("삼성전자")
	r := BuildCompanyReport(samsung, samsungPatents(), fixedNow, 12, algo.DefaultSpikeOptions())

	assert.Equal(t, "삼성전자", r.Company)
	assert.Equal(t, 17, r.TotalPatents, "undated record excluded")
	assert.Equal(t, 6, r.Buckets["1개월"])
	assert.Equal(t, 17, r.Buckets["12개월"])
	require.Len(t, r.Spikes, 1)
	assert.Equal(t, "HBM/고대역폭메모리", r.Spikes[0].Category)
	assert.Equal(t, schema.StrategicSpike, r.Spikes[0].Signal)
	assert.InDelta(t, 600.0, r.Spikes[0].SpikeRatioPct, 0.01)
	assert.Equal(t, 17, r.TechDistribution["HBM/고대역폭메모리"])
	assert.Equal(t, 17, r.IPCDistribution["패키징/어셈블리(후공정)"])
	assert.Equal(t, []schema.LabelCount{{Label: "H01L25/", Count: 17}}, r.TopIPC)
	assert.Equal(t, 17, r.IPCTree["반도체 소자/공정"]["패키징/어셈블리(후공정)"]["3D 스택/HBM"])
	assert.Len(t, r.SamplePatents, 5)
	assert.Len(t, r.Patents, 17)
}

func TestBuildCompanyReportScopesPeriod(t *testing.T) {
	samsung, _ := schema.LookupCompany("삼성전자")
	r := BuildCompanyReport(samsung, samsungPatents(), fixedNow, 1, algo.DefaultSpikeOptions())

	assert.Equal(t, 6, r.TotalPatents)
	assert.Len(t, r.Patents, 6)
	assert.Equal(t, 17, r.Buckets["12개월"], "buckets always cover the full window")
	require.Len(t, r.Spikes, 1, "spikes always use the full window")
	assert.Equal(t, 6, r.TechDistribution["HBM/고대역폭메모리"])
}

func TestBuildCompanyReportEmpty(t *testing.T) {
	r := BuildCompanyReport(schema.Company{Name: "x", Query: "x"}, nil, fixedNow, 12, algo.DefaultSpikeOptions())
	assert.Zero(t, r.TotalPatents)
	assert.Empty(t, r.Spikes)
	assert.Empty(t, r.SamplePatents)
	assert.Equal(t, 0, r.Buckets["1개월"])
}

func TestBuildAnalysisReport(t *testing.T) {
	report := testReport(t)
	assert.Equal(t, fixedNow, report.GeneratedAt)
	assert.Equal(t, 12, report.PeriodMonths)
	assert.InDelta(t, 200.0, report.SpikeThreshold, 0)
	require.Len(t, report.Companies, 2)
	assert.Equal(t, "삼성전자", report.Companies[0].Company)
	assert.Equal(t, "SK하이닉스", report.Companies[1].Company)
	assert.Equal(t, 42, TotalPatents(report))
	assert.Equal(t, 1, TotalSignals(report, schema.StrategicSpike))
	assert.Equal(t, 1, TotalSignals(report, schema.EmergingSignal))

	// fewer fetch results than companies leaves the rest empty
	short := BuildAnalysisReport(testConfig(t).Companies, nil, fixedNow, 12, algo.SpikeOptions{})
	assert.Zero(t, TotalPatents(short))
	assert.InDelta(t, schema.DefaultThresholdPct, short.SpikeThreshold, 0)
}

func TestBuildOverview(t *testing.T) {
	ov := BuildOverview(testReport(t))
	assert.Equal(t, 42, ov.TotalPatents)
	assert.Equal(t, 1, ov.StrategicSpikes)
	assert.Equal(t, "SK하이닉스", ov.TopCompany)
	assert.Equal(t, []schema.LabelCount{{Label: "SK하이닉스", Count: 25}, {Label: "삼성전자", Count: 17}}, ov.CompanyCounts)

	total := 0
	for _, p := range ov.Trend {
		total += p.Count
	}
	assert.Equal(t, 42, total)

	empty := BuildOverview(schema.AnalysisReport{Companies: []schema.CompanyReport{{Company: "x"}}})
	assert.Empty(t, empty.TopCompany)
}

func TestTreemapRows(t *testing.T) {
	report := testReport(t)
	rows := TreemapRows(report, algo.TreemapIPC)
	require.Len(t, rows, 2)
	assert.Equal(t, "SK하이닉스", rows[0].Company)
	assert.Equal(t, 25, rows[0].Count)
	assert.Len(t, rows[0].Path, 3)

	tech := TreemapRows(report, algo.TreemapTech)
	require.Len(t, tech, 2)
	assert.Equal(t, []string{"포토리소그래피", "EUV 리소그래피"}, tech[0].Path)
}

func TestClassifyPatents(t *testing.T) {
	patents := ClassifyPatents(testReport(t))
	require.Len(t, patents, 42)
	for i := 1; i < len(patents); i++ {
		assert.GreaterOrEqual(t, patents[i-1].OpenDate, patents[i].OpenDate)
	}
	assert.Equal(t, daysAgo(1), patents[0].OpenDate)
	for _, p := range patents {
		if p.Company == "SK하이닉스" {
			assert.Equal(t, "EUV 리소그래피", p.TechCategory)
			assert.Equal(t, "포토리소그래피", p.IPC.Level1)
		}
	}
}

func TestBuildDashboardPayload(t *testing.T) {
	payload := BuildDashboardPayload(testReport(t))
	assert.Equal(t, "2025-06-15T12:00:00Z", payload.GeneratedAt)
	assert.Equal(t, 12, payload.Period)
	require.Contains(t, payload.Companies, "삼성전자")
	samsung := payload.Companies["삼성전자"]
	assert.Equal(t, 6, samsung.Buckets["1개월"])
	require.Len(t, samsung.Spikes, 1)
	assert.Equal(t, schema.StrategicSpikeColor, samsung.Spikes[0].Color)

	empty := BuildDashboardPayload(schema.AnalysisReport{Companies: []schema.CompanyReport{{Company: "x"}}})
	assert.NotNil(t, empty.Companies["x"].Spikes)
}

func TestBuildCheckResult(t *testing.T) {
	result := BuildCheckResult(testReport(t))
	assert.False(t, result.Passed)
	assert.Equal(t, []string{"삼성전자", "SK하이닉스"}, result.Companies)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "HBM/고대역폭메모리", result.Violations[0].Category)

	cfg := testConfig(t)
	calm := BuildAnalysisReport(cfg.Companies[1:], [][]schema.Patent{hynixPatents()}, fixedNow, 12, spikeOptions(cfg))
	result = BuildCheckResult(calm)
	assert.True(t, result.Passed)
	assert.NotNil(t, result.Violations)
}

func TestBuildTiersModel(t *testing.T) {
	model := BuildTiersModel(250, false)
	require.Len(t, model.Tiers, 3)
	assert.Equal(t, schema.StrategicSpike, model.Tiers[0].Signal)
	assert.Equal(t, "ratio >= 250%", model.Tiers[0].Condition)
	assert.True(t, model.Tiers[0].Blink)
	assert.Equal(t, "150% <= ratio < 250%", model.Tiers[1].Condition)
	assert.Equal(t, schema.NormalSignal, model.Tiers[2].Signal)
	assert.Len(t, model.Periods, 4)
	assert.Len(t, model.Categories, len(algo.TechCategoryNames()))

	withNew := BuildTiersModel(200, true)
	require.Len(t, withNew.Tiers, 4)
	assert.Equal(t, schema.NewActivity, withNew.Tiers[2].Signal)
	assert.Equal(t, schema.NewActivityColor, withNew.Tiers[2].Color)
}

func TestGetAnalysisReport(t *testing.T) {
	useSource(t, newFakeSource())
	report, err := GetAnalysisReport(WithSuppressHeader(context.Background()), testConfig(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 42, TotalPatents(report))
}
