// Package metrics provides an OpenTelemetry meter provider backed by a
// manual reader, so counters can be collected on demand.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ServiceName identifies this module in the metrics resource.
const ServiceName = "avrocodec"

// Provider is a meter provider whose measurements are read with Collect or
// Counters.
type Provider struct {
	*sdkmetric.MeterProvider
	reader *sdkmetric.ManualReader
}

// NewManualProvider returns a provider with a plain service resource.
func NewManualProvider() *Provider {
	return newProvider(resource.NewSchemaless(semconv.ServiceNameKey.String(ServiceName)))
}

// NewProvider returns a provider whose resource also carries process and
// host attributes.
func NewProvider(ctx context.Context, serviceVersion string) (*Provider, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics resource: %w", err)
	}
	return newProvider(res), nil
}

func newProvider(res *resource.Resource) *Provider {
	reader := sdkmetric.NewManualReader()
	return &Provider{
		MeterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(reader),
			sdkmetric.WithResource(res),
		),
		reader: reader,
	}
}

// Collect reads the current state of every instrument.
func (p *Provider) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return rm, fmt.Errorf("failed to collect metrics: %w", err)
	}
	return rm, nil
}

// Counters sums every int64 counter across its attribute sets, keyed by
// instrument name.
func (p *Provider) Counters(ctx context.Context) (map[string]int64, error) {
	rm, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[m.Name] += dp.Value
			}
		}
	}
	return out, nil
}
