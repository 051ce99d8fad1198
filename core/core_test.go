package core

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/iocache"
	"github.com/semiconip/patentspike/internal/metrics"
	"github.com/semiconip/patentspike/internal/prompt"
	"github.com/semiconip/patentspike/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// readOutput decodes the JSON written to the configured output file.
func readOutput(t *testing.T, cfg *contract.Config, v any) {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestExecuteSpikes(t *testing.T) {
	useSource(t, newFakeSource())
	cfg := testConfig(t)
	require.NoError(t, ExecuteSpikes(WithSuppressHeader(context.Background()), cfg, nil))

	var doc struct {
		Spikes []schema.EnrichedSpikeAlert `json:"spikes"`
	}
	readOutput(t, cfg, &doc)
	require.Len(t, doc.Spikes, 2)
	assert.Equal(t, "삼성전자", doc.Spikes[0].Company)
	assert.Equal(t, schema.StrategicSpike, doc.Spikes[0].Signal)
	assert.Equal(t, schema.EmergingSignal, doc.Spikes[1].Signal)
}

func TestExecuteViewsWriteJSON(t *testing.T) {
	tests := []struct {
		name string
		exec ExecutorFunc
	}{
		{"buckets", ExecuteBuckets},
		{"treemap", ExecuteTreemap},
		{"trend", ExecuteTrend},
		{"overview", ExecuteOverview},
		{"company", ExecuteCompany},
		{"patents", ExecutePatents},
		{"heatmap", ExecuteHeatmap},
		{"companies", ExecuteCompanies},
		{"tiers", ExecuteTiers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useSource(t, newFakeSource())
			cfg := testConfig(t)
			require.NoError(t, tt.exec(WithSuppressHeader(context.Background()), cfg, nil))
			data, err := os.ReadFile(cfg.OutputFile)
			require.NoError(t, err)
			assert.True(t, json.Valid(data), "output is JSON")
		})
	}
}

func TestExecutePatentsHonorsLimit(t *testing.T) {
	useSource(t, newFakeSource())
	cfg := testConfig(t)
	cfg.ResultLimit = 10
	require.NoError(t, ExecutePatents(WithSuppressHeader(context.Background()), cfg, nil))

	var patents []schema.ClassifiedPatent
	readOutput(t, cfg, &patents)
	assert.Len(t, patents, 10)
}

func TestExecuteSourceError(t *testing.T) {
	prev := sourceFactory
	t.Cleanup(func() { sourceFactory = prev })
	sourceFactory = NewPatentSource

	cfg := testConfig(t)
	err := ExecuteSpikes(WithSuppressHeader(context.Background()), cfg, nil)
	assert.ErrorContains(t, err, "KIPRIS_API_KEY")
}

func TestExecuteCheck(t *testing.T) {
	useSource(t, newFakeSource())
	cfg := testConfig(t)
	err := ExecuteCheck(WithSuppressHeader(context.Background()), cfg, nil)
	require.ErrorIs(t, err, ErrCheckFailed)

	var result schema.CheckResult
	readOutput(t, cfg, &result)
	assert.False(t, result.Passed)
	assert.Len(t, result.Violations, 1)

	cfg.ThresholdPct = 700
	assert.NoError(t, ExecuteCheck(WithSuppressHeader(context.Background()), cfg, nil))
}

func TestExecutePrompt(t *testing.T) {
	useSource(t, newFakeSource())
	cfg := testConfig(t)
	require.NoError(t, ExecutePrompt(WithSuppressHeader(context.Background()), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "HBM/고대역폭메모리: 급증률 600%")
	assert.Contains(t, text, "EUV 리소그래피: 급증률 150%")
}

func TestExecuteAgentConfig(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, ExecuteAgentConfig(context.Background(), cfg, nil))

	var agent prompt.AgentConfig
	readOutput(t, cfg, &agent)
	assert.Equal(t, prompt.AgentName, agent.Name)
	assert.Equal(t, []string{"삼성전자", "SK하이닉스"}, agent.AnalysisConfig.TargetCompanies)

	cfg.Output = schema.TextOut
	require.NoError(t, ExecuteAgentConfig(context.Background(), cfg, nil))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "name: IP_Strategist"))
}

func TestExecuteSyncDryRun(t *testing.T) {
	useSource(t, newFakeSource())
	cfg := testConfig(t)
	cfg.DryRun = true
	require.NoError(t, ExecuteSync(WithSuppressHeader(context.Background()), cfg, nil))

	var bundle SyncBundle
	readOutput(t, cfg, &bundle)
	assert.Len(t, bundle.Trends.Companies, 2)
	assert.Equal(t, 1, bundle.Stats.StrategicSpikes)
	assert.Nil(t, bundle.Stats.Trend)
	require.Len(t, bundle.Alerts, 1)
	assert.Equal(t, "HBM/고대역폭메모리", bundle.Alerts[0].Category)

	_, err := os.Stat(cfg.SyncFile)
	assert.True(t, os.IsNotExist(err), "dry run writes no sync file")
}

func TestExecuteSyncRecordsDocuments(t *testing.T) {
	useSource(t, newFakeSource())
	cfg := testConfig(t)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.Anything, mock.Anything).Return(int64(3), nil)
	store.On("RecordSpikeAlert", int64(3), mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("EndAnalysis", int64(3), mock.Anything, 42, 1).Return(nil)
	for _, c := range []string{prompt.CollectionTrends, prompt.CollectionStats, prompt.CollectionAlerts} {
		store.On("RecordSyncDocument", int64(3), c, mock.AnythingOfType("[]uint8"), mock.AnythingOfType("time.Time")).
			Return("doc-"+c, nil).Once()
	}
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetCacheStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	require.NoError(t, ExecuteSync(WithSuppressHeader(context.Background()), cfg, mgr))
	store.AssertExpectations(t)

	data, err := os.ReadFile(cfg.SyncFile)
	require.NoError(t, err)
	var payload schema.DashboardPayload
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, 12, payload.Period)
	assert.Contains(t, string(data), "HBM/고대역폭메모리", "labels are not escaped")
}

func TestExecuteSyncWithoutStore(t *testing.T) {
	useSource(t, newFakeSource())
	cfg := testConfig(t)
	require.NoError(t, ExecuteSync(WithSuppressHeader(context.Background()), cfg, nil))
	_, err := os.Stat(cfg.SyncFile)
	assert.NoError(t, err)
}

// fakeMailer records deliveries.
type fakeMailer struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (f *fakeMailer) Send(_ context.Context, _ []string, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	return nil
}

func useMailer(t *testing.T, m contract.Mailer) {
	t.Helper()
	prev := newMailer
	newMailer = func(*contract.Config) (contract.Mailer, error) { return m, nil }
	t.Cleanup(func() { newMailer = prev })
}

func TestExecuteEmail(t *testing.T) {
	useSource(t, newFakeSource())
	mailer := &fakeMailer{}
	useMailer(t, mailer)

	cfg := testConfig(t)
	cfg.Recipients = []string{"ops@example.com"}
	require.NoError(t, ExecuteEmail(WithSuppressHeader(context.Background()), cfg, nil))
	require.Len(t, mailer.subjects, 2)
	assert.Equal(t, "[특허 인텔리전스] 삼성전자 — Strategic Spike 1개 감지", mailer.subjects[0])
	assert.Equal(t, "[특허 인텔리전스] SK하이닉스 — Strategic Spike 0개 감지", mailer.subjects[1])
}

func TestExecuteEmailErrors(t *testing.T) {
	useSource(t, newFakeSource())
	cfg := testConfig(t)
	assert.ErrorContains(t, ExecuteEmail(context.Background(), cfg, nil), "no recipients")

	useMailer(t, &fakeMailer{err: errUpstream})
	cfg.Recipients = []string{"ops@example.com"}
	assert.ErrorContains(t, ExecuteEmail(WithSuppressHeader(context.Background()), cfg, nil), "2 alert mails failed")
}

func TestSummarizeResults(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true
	report := testReport(t)
	report.Companies = append(report.Companies, schema.CompanyReport{Company: "조용한 회사"})

	results, err := sendAlerts(context.Background(), cfg, report)
	require.NoError(t, err)
	sum := summarizeResults(results)
	assert.Equal(t, deliverySummary{previewed: 2, skipped: 1}, sum)
}

func TestRunWatchCycle(t *testing.T) {
	useSource(t, newFakeSource())
	mailer := &fakeMailer{}
	useMailer(t, mailer)

	cfg := testConfig(t)
	cfg.Recipients = []string{"ops@example.com"}
	m := metrics.New()
	ctx := WithMetrics(WithSuppressHeader(context.Background()), m)

	require.NoError(t, runWatchCycle(ctx, cfg, nil, m))
	assert.Equal(t, 1.0, counterValue(t, m, "patentspike_runs_total", "ok"))
	assert.Equal(t, 2.0, counterValue(t, m, "patentspike_alert_mails_total", "ok"))
	assert.Len(t, mailer.subjects, 2)

	failing := newFakeSource()
	failing.errs["삼성전자"] = errUpstream
	useSource(t, failing)
	require.Error(t, runWatchCycle(ctx, cfg, nil, m))
	assert.Equal(t, 1.0, counterValue(t, m, "patentspike_runs_total", "error"))
}

func TestExecuteWatchStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schedule = "0 8 * * 1-5"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, ExecuteWatch(ctx, cfg, nil))

	cfg.Schedule = "not a schedule"
	assert.ErrorContains(t, ExecuteWatch(context.Background(), cfg, nil), "invalid schedule")
}
