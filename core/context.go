package core

import (
	"context"

	"github.com/semiconip/patentspike/internal/metrics"
)

// Context keys for analysis options
type contextKey string

const (
	metricsKey        contextKey = "metrics"
	suppressHeaderKey contextKey = "suppressHeader"
)

// WithMetrics attaches a metrics sink to the context. Runs started with this
// context report cache lookups and fetch failures to it.
func WithMetrics(ctx context.Context, m *metrics.Metrics) context.Context {
	return context.WithValue(ctx, metricsKey, m)
}

// metricsFromContext returns the attached metrics or nil
func metricsFromContext(ctx context.Context) *metrics.Metrics {
	m, _ := ctx.Value(metricsKey).(*metrics.Metrics)
	return m
}

// WithSuppressHeader disables the run header, used by watch mode and the MCP server.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	suppress, ok := ctx.Value(suppressHeaderKey).(bool)
	return ok && suppress
}
