// Package metrics exposes analysis results as Prometheus metrics for watch mode.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/semiconip/patentspike/schema"
)

const namespace = "patentspike"

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastRun       prometheus.Gauge
	patents       *prometheus.GaugeVec
	signals       *prometheus.GaugeVec
	spikeRatio    *prometheus.GaugeVec
	cacheLookups  *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	mailsSent     *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Analysis runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of an analysis run.",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		patents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "patents",
			Help:      "Patents analyzed in the last run.",
		}, []string{"company"}),
		signals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signals",
			Help:      "Categories per signal tier in the last run.",
		}, []string{"company", "signal"}),
		spikeRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "spike_ratio_percent",
			Help:      "Last-month count over the 11-month average, in percent.",
		}, []string{"company", "category"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "KIPRIS fetches that returned an error.",
		}, []string{"company"}),
		mailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_mails_total",
			Help:      "Alert mails by outcome.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.runs, m.runDuration, m.lastRun, m.patents, m.signals,
		m.spikeRatio, m.cacheLookups, m.fetchFailures, m.mailsSent,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRun records a finished run. Per-company gauges are replaced, not accumulated.
func (m *Metrics) ObserveRun(report schema.AnalysisReport, duration time.Duration, err error) {
	m.runDuration.Observe(duration.Seconds())
	if err != nil {
		m.runs.WithLabelValues("error").Inc()
		return
	}
	m.runs.WithLabelValues("ok").Inc()
	m.lastRun.Set(float64(report.GeneratedAt.Unix()))

	m.patents.Reset()
	m.signals.Reset()
	m.spikeRatio.Reset()
	for _, c := range report.Companies {
		m.patents.WithLabelValues(c.Company).Set(float64(c.TotalPatents))
		for _, s := range schema.AllSignals {
			m.signals.WithLabelValues(c.Company, string(s)).Set(float64(schema.CountSignal(c.Spikes, s)))
		}
		for _, a := range c.Spikes {
			m.spikeRatio.WithLabelValues(c.Company, a.Category).Set(a.SpikeRatioPct)
		}
	}
}

// CacheLookup counts a response cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// FetchFailed counts a failed KIPRIS fetch.
func (m *Metrics) FetchFailed(company string) {
	m.fetchFailures.WithLabelValues(company).Inc()
}

// MailSent counts an alert mail outcome.
func (m *Metrics) MailSent(ok bool) {
	status := "error"
	if ok {
		status = "ok"
	}
	m.mailsSent.WithLabelValues(status).Inc()
}
