// Package telemetry sets up OpenTelemetry metrics for the MCPHost server.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Config holds the opentelemetry settings.
type Config struct {
	ServiceName string
	Enabled     bool
}

// Providers holds the initialized opentelemetry providers.
// When telemetry is disabled, Meter is a no-op meter and Shutdown does nothing.
type Providers struct {
	Meter metric.Meter

	config        *Config
	meterProvider *sdkmetric.MeterProvider
}

// Init creates the metric providers described by cfg.
// Metrics are exported in the prometheus format on the default prometheus registry.
func Init(ctx context.Context, cfg *Config) (*Providers, error) {
	p := &Providers{config: cfg}
	if !cfg.Enabled {
		p.Meter = noop.NewMeterProvider().Meter(cfg.ServiceName)
		return p, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(p.meterProvider)
	p.Meter = p.meterProvider.Meter(cfg.ServiceName)

	return p, nil
}

// IsEnabled returns true if telemetry was enabled at init.
func (p *Providers) IsEnabled() bool {
	return p.config != nil && p.config.Enabled
}

// ServiceName returns the service name reported in telemetry.
func (p *Providers) ServiceName() string {
	if p.config == nil {
		return ""
	}
	return p.config.ServiceName
}

// Shutdown flushes and stops the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
