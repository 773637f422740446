package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/library-coordination-go/oteladapters"
)

func Test_SlogBridgeLoggerWithHandler_AddsTraceAndSpanIDs(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, nil))
	provider := trace.NewTracerProvider()
	ctx, span := provider.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	// act
	logger.InfoContext(ctx, "command completed", "command_type", "BorrowBook")

	// assert
	var record map[string]any
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "command completed", record["msg"])
	assert.Equal(t, "BorrowBook", record["command_type"])
	assert.Equal(t, span.SpanContext().TraceID().String(), record["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), record["span_id"])
}

func Test_SlogBridgeLoggerWithHandler_WithoutSpan(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// act
	logger.DebugContext(context.Background(), "command started")
	logger.WarnContext(context.Background(), "command rejected")
	logger.ErrorContext(context.Background(), "command failed")

	// assert
	assert.NotContains(t, buf.String(), "trace_id")
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func Test_NewSlogBridgeLogger_WithNoopProvider(t *testing.T) {
	// arrange
	logger := oteladapters.NewSlogBridgeLogger("test", noop.NewLoggerProvider())

	// act + assert
	assert.NotPanics(t, func() { logger.InfoContext(context.Background(), "hello", "k", "v") })
}

func Test_OTelLogger_EmitsSeverityBodyAndAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.WarnContext(context.Background(), "command rejected", "command_type", "ReturnBook", "attempt", 2, "dangling")

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityWarn, record.Severity())
	assert.Equal(t, "command rejected", record.Body().AsString())

	attrs := map[string]string{}
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	assert.Equal(t, map[string]string{"command_type": "ReturnBook", "attempt": "2"}, attrs)
}

type recordingLogger struct {
	embedded.Logger
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.records = append(l.records, record)
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}
