package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-coordination-go/oteladapters"
)

func Test_Providers_SnapshotListsRecordedInstruments(t *testing.T) {
	// arrange
	ctx := context.Background()
	providers := oteladapters.NewProviders("librarysim-test")
	t.Cleanup(func() { _ = providers.Shutdown(ctx) })
	metrics := providers.MetricsCollector()
	tracing := providers.TracingCollector()

	// act
	spanCtx, span := tracing.StartSpan(ctx, "library.command", nil)
	metrics.RecordDurationContext(spanCtx, "library_command_duration_seconds", time.Millisecond, map[string]string{"status": "success"})
	metrics.IncrementCounter("library_command_calls_total", map[string]string{"status": "success"})
	metrics.IncrementCounter("library_command_calls_total", map[string]string{"status": "rejected"})
	tracing.FinishSpan(span, "success", nil)

	summaries, err := providers.Snapshot(ctx)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []oteladapters.MetricSummary{
		{Name: "library_command_calls_total", DataPoints: 2},
		{Name: "library_command_duration_seconds", DataPoints: 1},
	}, summaries)
}
