package promadapters_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-coordination-go/promadapters"
)

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)
	labels := map[string]string{"command_type": "BorrowBook", "status": "success"}

	// act
	collector.IncrementCounter("library_command_calls_total", labels)
	collector.IncrementCounterContext(context.Background(), "library_command_calls_total", labels)
	collector.IncrementCounter("library_command_calls_total", map[string]string{"command_type": "BorrowBook", "status": "rejected"})

	// assert
	expected := `
# HELP library_command_calls_total Library operation counter.
# TYPE library_command_calls_total counter
library_command_calls_total{command_type="BorrowBook",status="rejected"} 1
library_command_calls_total{command_type="BorrowBook",status="success"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "library_command_calls_total"))
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	collector.RecordValue("library_books_borrowed", 3, nil)
	collector.RecordValueContext(context.Background(), "library_books_borrowed", 1, nil)

	// assert
	expected := `
# HELP library_books_borrowed Library current value.
# TYPE library_books_borrowed gauge
library_books_borrowed 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "library_books_borrowed"))
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	collector.RecordDuration("library_command_duration_seconds", 20*time.Millisecond, map[string]string{"status": "success"})
	collector.RecordDurationContext(context.Background(), "library_command_duration_seconds", 30*time.Millisecond, map[string]string{"status": "success"})

	// assert
	count, err := testutil.GatherAndCount(registry, "library_command_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one labeled series")
}

func Test_MetricsCollector_DropsMismatchingLabelNames(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)
	collector.IncrementCounter("library_journal_retries_total", map[string]string{"command_type": "BorrowBook"})

	// act + assert
	assert.NotPanics(t, func() {
		collector.IncrementCounter("library_journal_retries_total", map[string]string{"attempt": "1"})
	})
	count, err := testutil.GatherAndCount(registry, "library_journal_retries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func Test_MetricsCollector_SharesRegistryWithSecondCollector(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	first := promadapters.NewMetricsCollector(registry)
	second := promadapters.NewMetricsCollector(registry)

	// act
	first.IncrementCounter("library_command_calls_total", nil)
	second.IncrementCounter("library_command_calls_total", nil)

	// assert
	expected := `
# HELP library_command_calls_total Library operation counter.
# TYPE library_command_calls_total counter
library_command_calls_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "library_command_calls_total"))
}

func Test_MetricsCollector_Snapshot(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)
	collector.RecordValue("library_books_borrowed", 2, nil)
	collector.IncrementCounter("library_command_calls_total", map[string]string{"status": "success"})
	collector.IncrementCounter("library_command_calls_total", map[string]string{"status": "rejected"})

	// act
	summaries, err := collector.Snapshot()

	// assert
	require.NoError(t, err)
	assert.Equal(t, []promadapters.MetricSummary{
		{Name: "library_books_borrowed", Type: "gauge", Samples: 1},
		{Name: "library_command_calls_total", Type: "counter", Samples: 2},
	}, summaries)
}
