package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RouteOutcome describes how a routing request ended.
type RouteOutcome string

const (
	RouteOutcomeSuccess        RouteOutcome = "success"
	RouteOutcomeToolNotFound   RouteOutcome = "tool_not_found"
	RouteOutcomeServerNotFound RouteOutcome = "server_not_found"
)

// CustomMetrics records the directory's own metrics.
type CustomMetrics interface {
	// RecordRoute counts one routing request. strategy must come from a closed set of values.
	RecordRoute(ctx context.Context, strategy string, outcome RouteOutcome)
	// RecordCompletion counts one finished dispatch on a server.
	RecordCompletion(ctx context.Context)
	// RecordReconcile records one reconciliation pass, how many servers it purged and how long it took.
	RecordReconcile(ctx context.Context, purged int, duration time.Duration)
}

type noopCustomMetrics struct{}

// NewNoopCustomMetrics returns a CustomMetrics that discards everything.
func NewNoopCustomMetrics() CustomMetrics {
	return noopCustomMetrics{}
}

func (noopCustomMetrics) RecordRoute(context.Context, string, RouteOutcome) {}

func (noopCustomMetrics) RecordCompletion(context.Context) {}

func (noopCustomMetrics) RecordReconcile(context.Context, int, time.Duration) {}

type otelCustomMetrics struct {
	routeRequests     metric.Int64Counter
	completions       metric.Int64Counter
	reconcilePasses   metric.Int64Counter
	serversPurged     metric.Int64Counter
	reconcileDuration metric.Float64Histogram
}

// NewOtelCustomMetrics creates the directory's instruments on the given meter.
func NewOtelCustomMetrics(meter metric.Meter) (CustomMetrics, error) {
	m := &otelCustomMetrics{}
	var err error

	m.routeRequests, err = meter.Int64Counter(
		"mcphost_route_requests_total",
		metric.WithDescription("Number of tool routing requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create route requests counter: %w", err)
	}

	m.completions, err = meter.Int64Counter(
		"mcphost_completions_total",
		metric.WithDescription("Number of completed dispatches reported back"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create completions counter: %w", err)
	}

	m.reconcilePasses, err = meter.Int64Counter(
		"mcphost_reconcile_passes_total",
		metric.WithDescription("Number of liveness reconciliation passes"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconcile passes counter: %w", err)
	}

	m.serversPurged, err = meter.Int64Counter(
		"mcphost_servers_purged_total",
		metric.WithDescription("Number of inactive servers purged from routing"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create purged servers counter: %w", err)
	}

	m.reconcileDuration, err = meter.Float64Histogram(
		"mcphost_reconcile_duration_seconds",
		metric.WithDescription("Duration of a liveness reconciliation pass"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconcile duration histogram: %w", err)
	}

	return m, nil
}

func (m *otelCustomMetrics) RecordRoute(ctx context.Context, strategy string, outcome RouteOutcome) {
	m.routeRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.String("outcome", string(outcome)),
	))
}

func (m *otelCustomMetrics) RecordCompletion(ctx context.Context) {
	m.completions.Add(ctx, 1)
}

func (m *otelCustomMetrics) RecordReconcile(ctx context.Context, purged int, duration time.Duration) {
	m.reconcilePasses.Add(ctx, 1)
	if purged > 0 {
		m.serversPurged.Add(ctx, int64(purged))
	}
	m.reconcileDuration.Record(ctx, duration.Seconds())
}
