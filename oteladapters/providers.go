package oteladapters

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Providers bundles an in-process MeterProvider and TracerProvider for one service.
// Metrics are pulled with Snapshot, spans are sampled but not exported.
type Providers struct {
	reader         *metric.ManualReader
	meterProvider  *metric.MeterProvider
	tracerProvider *trace.TracerProvider
	serviceName    string
}

// MetricSummary is one instrument in a Snapshot.
type MetricSummary struct {
	Name       string
	DataPoints int
}

// NewProviders creates the providers, tagging everything with service.name.
func NewProviders(serviceName string) *Providers {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	reader := metric.NewManualReader()

	return &Providers{
		reader:         reader,
		meterProvider:  metric.NewMeterProvider(metric.WithReader(reader), metric.WithResource(res)),
		tracerProvider: trace.NewTracerProvider(trace.WithResource(res), trace.WithSampler(trace.AlwaysSample())),
		serviceName:    serviceName,
	}
}

// MetricsCollector returns a MetricsCollector on a meter of these providers.
func (p *Providers) MetricsCollector() *MetricsCollector {
	return NewMetricsCollector(p.meterProvider.Meter(p.serviceName))
}

// TracingCollector returns a TracingCollector on a tracer of these providers.
func (p *Providers) TracingCollector() *TracingCollector {
	return NewTracingCollector(p.tracerProvider.Tracer(p.serviceName))
}

// Snapshot collects all instruments recorded so far, sorted by name.
func (p *Providers) Snapshot(ctx context.Context) ([]MetricSummary, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	summaries := make([]MetricSummary, 0)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			summaries = append(summaries, MetricSummary{Name: m.Name, DataPoints: dataPoints(m.Data)})
		}
	}

	slices.SortFunc(summaries, func(a, b MetricSummary) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return summaries, nil
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.meterProvider.Shutdown(ctx), p.tracerProvider.Shutdown(ctx))
}

func dataPoints(data metricdata.Aggregation) int {
	switch d := data.(type) {
	case metricdata.Histogram[float64]:
		return len(d.DataPoints)
	case metricdata.Sum[int64]:
		return len(d.DataPoints)
	case metricdata.Gauge[float64]:
		return len(d.DataPoints)
	default:
		return 0
	}
}
