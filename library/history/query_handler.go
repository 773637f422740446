package history

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
)

// EventStore defines the interface needed by the QueryHandler for journal reads.
type EventStore interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// QueryHandler reads the journal and projects the history of a user.
type QueryHandler struct {
	eventStore       EventStore
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewQueryHandler creates a new QueryHandler with the provided EventStore dependency and options.
func NewQueryHandler(eventStore EventStore, opts ...Option) (QueryHandler, error) {
	h := QueryHandler{
		eventStore: eventStore,
	}

	for _, opt := range opts {
		if err := opt(&h); err != nil {
			return QueryHandler{}, err
		}
	}

	return h, nil
}

// Handle executes Query -> Unmarshal -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	start := time.Now()
	ctx, span := shell.StartQuerySpan(ctx, h.tracingCollector, query.QueryType())

	storableEvents, maxSeq, err := h.eventStore.Query(ctx, BuildEventFilter(query))
	if err != nil {
		h.recordQueryError(ctx, query, err, time.Since(start), span)
		return Result{}, err
	}

	domainEvents, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		h.recordQueryError(ctx, query, err, time.Since(start), span)
		return Result{}, err
	}

	result := Project(domainEvents, query, maxSeq)

	h.recordQuerySuccess(ctx, query, result, time.Since(start), span)

	return result, nil
}

/*** Query Handler Options and helper methods for observability ***/

// Option defines a functional option for configuring QueryHandler.
type Option func(*QueryHandler) error

// WithMetrics sets the metrics collector for the QueryHandler.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(h *QueryHandler) error {
		h.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the QueryHandler.
func WithTracing(collector shell.TracingCollector) Option {
	return func(h *QueryHandler) error {
		h.tracingCollector = collector
		return nil
	}
}

// WithContextualLogging sets the contextual logger for the QueryHandler.
func WithContextualLogging(logger shell.ContextualLogger) Option {
	return func(h *QueryHandler) error {
		h.contextualLogger = logger
		return nil
	}
}

// WithLogging sets the basic logger for the QueryHandler.
func WithLogging(logger shell.Logger) Option {
	return func(h *QueryHandler) error {
		h.logger = logger
		return nil
	}
}

func (h QueryHandler) recordQuerySuccess(ctx context.Context, query Query, result Result, duration time.Duration, span shell.SpanContext) {
	outcome := fmt.Sprintf("%d entries, %d borrowed", len(result.Entries), len(result.CurrentlyBorrowed))

	shell.RecordQueryMetrics(ctx, h.metricsCollector, query.QueryType(), shell.StatusSuccess, duration)
	shell.FinishSpan(h.tracingCollector, span, shell.StatusSuccess, duration, nil)
	shell.LogQuerySuccess(ctx, h.logger, h.contextualLogger, query.QueryType(), outcome, duration)
}

func (h QueryHandler) recordQueryError(ctx context.Context, query Query, err error, duration time.Duration, span shell.SpanContext) {
	status := shell.StatusFor(err)

	shell.RecordQueryMetrics(ctx, h.metricsCollector, query.QueryType(), status, duration)
	shell.FinishSpan(h.tracingCollector, span, status, duration, err)
	shell.LogQueryError(ctx, h.logger, h.contextualLogger, query.QueryType(), err)
}
