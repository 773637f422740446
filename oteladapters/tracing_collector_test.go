package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-coordination-go/oteladapters"
	"github.com/AntonStoeckl/library-coordination-go/testutil/testdoubles"
)

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()

	// act
	ctx, span := collector.StartSpan(context.Background(), "library.command", map[string]string{"command_type": "BorrowBook"})
	collector.FinishSpan(span, "success", map[string]string{"duration_ms": "0.50"})

	// assert
	assert.True(t, oteltrace.SpanContextFromContext(ctx).IsValid())
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "library.command", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("command_type", "BorrowBook"))
	assert.Contains(t, spans[0].Attributes, attribute.String("duration_ms", "0.50"))
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status   string
		expected codes.Code
	}{
		{"success", codes.Ok},
		{"rejected", codes.Ok},
		{"error", codes.Error},
		{"canceled", codes.Error},
		{"timeout", codes.Error},
		{"concurrency_conflict", codes.Error},
		{"something_else", codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			exporter, collector := givenTracingCollector()
			_, span := collector.StartSpan(context.Background(), "op", nil)

			// act
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expected, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_IgnoresForeignSpanContext(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()
	_, foreign := testdoubles.NewTracingCollectorSpy().StartSpan(context.Background(), "spy", nil)

	// act + assert
	assert.NotPanics(t, func() { collector.FinishSpan(foreign, "success", nil) })
	assert.NotPanics(t, func() { collector.FinishSpan(nil, "success", nil) })
	assert.Empty(t, exporter.GetSpans())
}

func Test_TracingCollector_NilTracer(t *testing.T) {
	// arrange
	collector := oteladapters.NewTracingCollector(nil)

	// act
	ctx, span := collector.StartSpan(context.Background(), "op", nil)

	// assert
	assert.NotNil(t, ctx)
	assert.Nil(t, span)
}

func givenTracingCollector() (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSyncer(exporter))

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("test"))
}
