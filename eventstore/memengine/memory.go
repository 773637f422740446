package memengine

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
)

const (
	QueryDurationMetric        = "eventstore_query_duration_seconds"
	AppendDurationMetric       = "eventstore_append_duration_seconds"
	ConcurrencyConflictsMetric = "eventstore_concurrency_conflicts_total"
	JournalSizeMetric          = "eventstore_journal_events"

	logMsgQueryCompleted      = "query completed"
	logMsgEventsAppended      = "events appended"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgOperationCanceled   = "eventstore operation canceled"
	logAttrOperation          = "operation"
	logAttrEventCount         = "event_count"
	logAttrDurationMS         = "duration_ms"
	logAttrExpectedSequence   = "expected_sequence"
	logAttrActualSequence     = "actual_sequence"
	logAttrError              = "error"
	operationQuery            = "query"
	operationAppend           = "append"
)

// EventStore is an in-memory journal. It is safe for concurrent use.
type EventStore struct {
	mu               sync.RWMutex
	events           eventstore.StorableEvents
	snapshotsMu      sync.RWMutex
	snapshots        map[snapshotKey]eventstore.Snapshot
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metricsCollector eventstore.MetricsCollector
}

// NewEventStore creates an empty EventStore with optional configuration.
func NewEventStore(options ...Option) (*EventStore, error) {
	es := &EventStore{snapshots: make(map[snapshotKey]eventstore.Snapshot)}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Query returns all events matching the filter in append order, together with the
// highest sequence number among them (0 for an empty stream).
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		es.logError(ctx, operationQuery, err)
		return eventstore.StorableEvents{}, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}

	start := time.Now()

	es.mu.RLock()
	stream, maxSequenceNumber := es.matching(filter)
	es.mu.RUnlock()

	duration := time.Since(start)
	es.recordDuration(ctx, QueryDurationMetric, duration)
	es.logDebug(ctx, logMsgQueryCompleted, logAttrEventCount, len(stream), logAttrDurationMS, milliseconds(duration))

	return stream, maxSequenceNumber, nil
}

// Append appends the events atomically if the stream selected by filter has not advanced past
// expectedMaxSequenceNumber. Otherwise, it returns eventstore.ErrConcurrencyConflict and appends nothing.
//
// The filter should be the one used for the Query before making the business decision.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		es.logError(ctx, operationAppend, err)
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)
	for _, e := range allEvents {
		if e.EventType == "" {
			return errors.Join(eventstore.ErrAppendingEventFailed, eventstore.ErrEmptyEventType)
		}
	}

	start := time.Now()

	es.mu.Lock()
	_, actualMaxSequenceNumber := es.matching(filter)
	if actualMaxSequenceNumber != expectedMaxSequenceNumber {
		es.mu.Unlock()
		es.recordConflict(ctx, expectedMaxSequenceNumber, actualMaxSequenceNumber)

		return eventstore.ErrConcurrencyConflict
	}

	for _, e := range allEvents {
		e.SequenceNumber = eventstore.MaxSequenceNumberUint(len(es.events) + 1)
		es.events = append(es.events, e)
	}
	journalSize := len(es.events)
	es.mu.Unlock()

	duration := time.Since(start)
	es.recordDuration(ctx, AppendDurationMetric, duration)
	es.recordJournalSize(ctx, journalSize)
	es.logDebug(ctx, logMsgEventsAppended, logAttrEventCount, len(allEvents), logAttrDurationMS, milliseconds(duration))

	return nil
}

// matching must be called with at least a read lock held.
func (es *EventStore) matching(filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint) {
	stream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for _, e := range es.events {
		if !filter.Matches(e) {
			continue
		}

		e.PayloadJSON = slices.Clone(e.PayloadJSON)
		e.MetadataJSON = slices.Clone(e.MetadataJSON)
		stream = append(stream, e)
		maxSequenceNumber = e.SequenceNumber
	}

	return stream, maxSequenceNumber
}

func (es *EventStore) recordConflict(ctx context.Context, expected, actual eventstore.MaxSequenceNumberUint) {
	if es.metricsCollector != nil {
		labels := map[string]string{logAttrOperation: operationAppend}
		if c, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
			c.IncrementCounterContext(ctx, ConcurrencyConflictsMetric, labels)
		} else {
			es.metricsCollector.IncrementCounter(ConcurrencyConflictsMetric, labels)
		}
	}

	args := []any{logAttrExpectedSequence, expected, logAttrActualSequence, actual}
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.InfoContext(ctx, logMsgConcurrencyConflict, args...)
	case es.logger != nil:
		es.logger.Info(logMsgConcurrencyConflict, args...)
	}
}

func (es *EventStore) recordDuration(ctx context.Context, metric string, duration time.Duration) {
	if es.metricsCollector == nil {
		return
	}

	if c, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		c.RecordDurationContext(ctx, metric, duration, nil)
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, nil)
}

func (es *EventStore) recordJournalSize(ctx context.Context, size int) {
	if es.metricsCollector == nil {
		return
	}

	if c, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		c.RecordValueContext(ctx, JournalSizeMetric, float64(size), nil)
		return
	}

	es.metricsCollector.RecordValue(JournalSizeMetric, float64(size), nil)
}

func (es *EventStore) logDebug(ctx context.Context, msg string, args ...any) {
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.DebugContext(ctx, msg, args...)
	case es.logger != nil:
		es.logger.Debug(msg, args...)
	}
}

func (es *EventStore) logError(ctx context.Context, operation string, err error) {
	args := []any{logAttrOperation, operation, logAttrError, err.Error()}
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.ErrorContext(ctx, logMsgOperationCanceled, args...)
	case es.logger != nil:
		es.logger.Error(logMsgOperationCanceled, args...)
	}
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
