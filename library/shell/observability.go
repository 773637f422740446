package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
)

const (
	// CommandDurationMetric tracks borrow/return execution duration.
	CommandDurationMetric = "library_command_duration_seconds"

	// CommandCallsMetric counts borrow/return calls by command type and status.
	CommandCallsMetric = "library_command_calls_total"

	// CommandCanceledMetric counts commands rejected because their context was canceled.
	CommandCanceledMetric = "library_command_canceled_total"

	// CommandTimeoutMetric counts commands rejected because their context deadline was exceeded.
	CommandTimeoutMetric = "library_command_timeout_total"

	// BooksBorrowedMetric is a gauge of the books currently held by users.
	BooksBorrowedMetric = "library_books_borrowed"

	// QueryDurationMetric tracks query handler execution duration.
	QueryDurationMetric = "library_query_duration_seconds"

	// QueryCallsMetric counts query handler calls by query type and status.
	QueryCallsMetric = "library_query_calls_total"

	// QuerySnapshotsMetric counts snapshot-aware queries by query type and snapshot reason.
	QuerySnapshotsMetric = "library_query_snapshots_total"

	// StatusSuccess indicates the command changed state as requested.
	StatusSuccess = "success"

	// StatusRejected indicates a business refusal, e.g. the book is already borrowed.
	StatusRejected = "rejected"

	// StatusError indicates a technical failure, e.g. the journal append failed.
	StatusError = "error"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates the journal moved on underneath the operation.
	StatusConcurrencyConflict = "concurrency_conflict"

	LogMsgCommandStarted   = "command started"
	LogMsgCommandCompleted = "command completed"
	LogMsgCommandRejected  = "command rejected"
	LogMsgCommandFailed    = "command failed"
	LogMsgQueryStarted     = "query started"
	LogMsgQueryCompleted   = "query completed"
	LogMsgQueryFailed      = "query failed"

	LogMsgSnapshotHit       = "snapshot hit: incremental query"
	LogMsgSnapshotFallback  = "snapshot fallback to full query"
	LogMsgSnapshotSaved     = "snapshot saved"
	LogMsgSnapshotSaveError = "snapshot save error"

	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrStatus          = "status"
	LogAttrUserName        = "user_name"
	LogAttrTitle           = "title"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrDurationMS      = "duration_ms"
	LogAttrError           = "error"
	LogAttrSnapshotReason  = "snapshot_reason"
	LogAttrFromSequence    = "from_sequence"
	LogAttrToSequence      = "to_sequence"
	LogAttrEventCount      = "event_count"
	LogAttrOperation       = "operation"

	SnapshotReasonHit                   = "snapshot_hit"
	SnapshotReasonMiss                  = "snapshot_miss"
	SnapshotReasonError                 = "snapshot_error"
	SnapshotReasonIncrementalQueryError = "incremental_query_error"
	SnapshotReasonUnmarshalError        = "unmarshal_error"
	SnapshotReasonDeserializeError      = "deserialize_error"

	// SpanNameCommand is the span name for borrow/return commands.
	SpanNameCommand = "library.command"

	// SpanNameQuery is the span name for query handlers.
	SpanNameQuery = "library.query"
)

// MetricsCollector interface for collecting command and query metrics.
type MetricsCollector = eventstore.MetricsCollector

// ContextualMetricsCollector interface for context-aware metrics collection.
type ContextualMetricsCollector = eventstore.ContextualMetricsCollector

// TracingCollector interface for distributed tracing.
type TracingCollector = eventstore.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = eventstore.SpanContext

// ContextualLogger interface for context-aware logging.
type ContextualLogger = eventstore.ContextualLogger

// Logger interface for basic logging.
type Logger = eventstore.Logger

// BuildCommandLabels creates standard metric labels for command operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates standard metric labels for query operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// RecordCommandMetrics records duration and call count of a command, plus the dedicated
// canceled/timeout counters. It prefers the context-aware methods when available.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {

	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandCallsMetric, labels)

	switch status {
	case StatusCanceled:
		incrementCounter(ctx, collector, CommandCanceledMetric, BuildCommandLabels(commandType, status))
	case StatusTimeout:
		incrementCounter(ctx, collector, CommandTimeoutMetric, BuildCommandLabels(commandType, status))
	}
}

// RecordQueryMetrics records duration and call count of a query.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {

	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, QueryDurationMetric, duration, labels)
	incrementCounter(ctx, collector, QueryCallsMetric, labels)
}

// RecordQuerySnapshot counts how a snapshot-aware query was answered.
func RecordQuerySnapshot(ctx context.Context, collector MetricsCollector, queryType string, reason string) {
	if collector == nil {
		return
	}

	incrementCounter(ctx, collector, QuerySnapshotsMetric, map[string]string{
		LogAttrQueryType:      queryType,
		LogAttrSnapshotReason: reason,
	})
}

// RecordBooksBorrowed sets the borrowed-books gauge.
func RecordBooksBorrowed(ctx context.Context, collector MetricsCollector, count int) {
	if collector == nil {
		return
	}

	if c, ok := collector.(ContextualMetricsCollector); ok {
		c.RecordValueContext(ctx, BooksBorrowedMetric, float64(count), nil)
		return
	}

	collector.RecordValue(BooksBorrowedMetric, float64(count), nil)
}

// StartCommandSpan starts a tracing span for a command.
// Returns the updated context and span context, or the original context and nil if tracing is disabled.
func StartCommandSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	commandType string,
	userName string,
	title string,
) (context.Context, SpanContext) {

	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrCommandType: commandType,
		LogAttrUserName:    userName,
		LogAttrTitle:       title,
	}

	return tracingCollector.StartSpan(ctx, SpanNameCommand, attrs)
}

// StartQuerySpan starts a tracing span for a query.
func StartQuerySpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	queryType string,
) (context.Context, SpanContext) {

	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameQuery, map[string]string{LogAttrQueryType: queryType})
}

// FinishSpan completes a tracing span with the operation outcome.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {

	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: formatDurationMS(duration),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	userName string,
	title string,
) {

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrUserName, userName,
		LogAttrTitle, title,
	}

	if contextualLogger != nil {
		contextualLogger.DebugContext(ctx, LogMsgCommandStarted, args...)
	} else if logger != nil {
		logger.Debug(LogMsgCommandStarted, args...)
	}
}

// LogCommandSuccess logs successful command completion.
func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	businessOutcome string,
	duration time.Duration,
) {

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, businessOutcome,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgCommandCompleted, args...)
	}
}

// LogCommandRejected logs a business refusal. Refusals are expected outcomes, so they go to warn level.
func LogCommandRejected(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	reason error,
) {

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, reason.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.WarnContext(ctx, LogMsgCommandRejected, args...)
	} else if logger != nil {
		logger.Warn(LogMsgCommandRejected, args...)
	}
}

// LogCommandError logs technical command failures.
func LogCommandError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	err error,
) {

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgCommandFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgCommandFailed, args...)
	}
}

// LogQuerySuccess logs successful query completion.
func LogQuerySuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	businessOutcome string,
	duration time.Duration,
) {

	args := []any{
		LogAttrQueryType, queryType,
		LogAttrBusinessOutcome, businessOutcome,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgQueryCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgQueryCompleted, args...)
	}
}

// LogQueryError logs query processing errors.
func LogQueryError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	err error,
) {

	args := []any{
		LogAttrQueryType, queryType,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgQueryFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgQueryFailed, args...)
	}
}

// StatusFor classifies an error into one of the Status constants. businessErrors are the
// sentinels that count as refusals rather than failures.
func StatusFor(err error, businessErrors ...error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	}

	for _, businessErr := range businessErrors {
		if errors.Is(err, businessErr) {
			return StatusRejected
		}
	}

	return StatusError
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if an error is due to optimistic concurrency control failure.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, eventstore.ErrConcurrencyConflict)
}

func recordDuration(ctx context.Context, collector MetricsCollector, metric string, d time.Duration, labels map[string]string) {
	if c, ok := collector.(ContextualMetricsCollector); ok {
		c.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	collector.RecordDuration(metric, d, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if c, ok := collector.(ContextualMetricsCollector); ok {
		c.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// formatDurationMS formats duration in milliseconds for span attributes.
func formatDurationMS(duration time.Duration) string {
	return fmt.Sprintf("%.2f", ToMilliseconds(duration))
}

// LogInfo logs at info level on whichever logger is configured, preferring the contextual one.
func LogInfo(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

// LogError logs at error level on whichever logger is configured, preferring the contextual one.
func LogError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Error(msg, args...)
	}
}
