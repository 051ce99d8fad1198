package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/metrics"
	"github.com/semiconip/patentspike/schema"
	"go.uber.org/zap"
)

const metricsShutdownTimeout = 5 * time.Second

// ExecuteWatch runs the analysis on the configured cron schedule until ctx is canceled.
// Each run is tracked, alerts are mailed when recipients are configured, and metrics are
// served on the metrics address when one is set.
func ExecuteWatch(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}

	m := metrics.New()
	ctx = WithMetrics(WithSuppressHeader(ctx), m)
	logger := contract.Logger()

	var server *http.Server
	if cfg.MetricsAddr != "" {
		server = newMetricsServer(cfg.MetricsAddr, m)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				contract.LogWarn("Metrics server stopped", err)
			}
		}()
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(schedule, cron.FuncJob(func() {
		_ = runWatchCycle(ctx, cfg, mgr, m)
	}))
	c.Start()
	logger.Info("watch started",
		zap.String("schedule", cfg.Schedule),
		zap.Time("next_run", schedule.Next(time.Now())))

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("watch stopped")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
	}
	return nil
}

// newMetricsServer exposes the registry under /metrics.
func newMetricsServer(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// runWatchCycle performs one scheduled run. Failures are logged and counted, never fatal.
func runWatchCycle(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, m *metrics.Metrics) error {
	start := time.Now()
	report, _, err := analyze(ctx, cfg, mgr)
	m.ObserveRun(report, time.Since(start), err)
	if err != nil {
		contract.LogWarn("Scheduled analysis failed", err)
		return err
	}

	contract.Logger().Info("scheduled analysis finished",
		zap.Int("companies", len(report.Companies)),
		zap.Int("patents", TotalPatents(report)),
		zap.Int("strategic_spikes", TotalSignals(report, schema.StrategicSpike)),
		zap.Int("emerging_signals", TotalSignals(report, schema.EmergingSignal)),
		zap.Duration("duration", time.Since(start)))

	if len(cfg.Recipients) == 0 && !cfg.DryRun {
		return nil
	}
	results, err := sendAlerts(ctx, cfg, report)
	if err != nil {
		contract.LogWarn("Alert delivery failed", err)
		return err
	}
	if sum := summarizeResults(results); sum.failed > 0 {
		return fmt.Errorf("%d alert mails failed", sum.failed)
	}
	return nil
}
