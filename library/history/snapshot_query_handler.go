package history

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
)

// SnapshotStore is what a journal needs to offer for snapshot-aware history reads.
type SnapshotStore interface {
	EventStore
	SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error
	LoadSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) (*eventstore.Snapshot, error)
}

// SnapshotQueryHandler answers history queries from a stored snapshot plus the events appended since.
// Whenever the snapshot path fails it falls back to the full query of the base handler.
type SnapshotQueryHandler struct {
	base  QueryHandler
	store SnapshotStore
}

// NewSnapshotQueryHandler wraps base. Observability is taken over from base.
func NewSnapshotQueryHandler(base QueryHandler, store SnapshotStore) SnapshotQueryHandler {
	return SnapshotQueryHandler{base: base, store: store}
}

// Handle executes LoadSnapshot -> incremental Query -> Unmarshal -> ProjectOnto -> SaveSnapshot.
func (h SnapshotQueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	filter := BuildEventFilter(query)

	snapshot, err := h.store.LoadSnapshot(ctx, query.QueryType(), filter)
	if err != nil {
		shell.LogError(ctx, h.base.logger, h.base.contextualLogger, shell.LogMsgSnapshotFallback,
			shell.LogAttrSnapshotReason, shell.SnapshotReasonError, shell.LogAttrError, err.Error())
		return h.fallback(ctx, query, shell.SnapshotReasonError)
	}

	if snapshot == nil {
		return h.fallback(ctx, query, shell.SnapshotReasonMiss)
	}

	start := time.Now()
	ctx, span := shell.StartQuerySpan(ctx, h.base.tracingCollector, query.QueryType())

	storableEvents, maxSeq, err := h.store.Query(ctx, filter.WithSequenceNumberHigherThan(snapshot.SequenceNumber))
	if err != nil {
		shell.FinishSpan(h.base.tracingCollector, span, shell.StatusFor(err), time.Since(start), err)
		return h.fallback(ctx, query, shell.SnapshotReasonIncrementalQueryError)
	}

	domainEvents, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		shell.FinishSpan(h.base.tracingCollector, span, shell.StatusError, time.Since(start), err)
		return h.fallback(ctx, query, shell.SnapshotReasonUnmarshalError)
	}

	var base Result
	if err = jsoniter.ConfigFastest.Unmarshal(snapshot.Data, &base); err != nil {
		shell.FinishSpan(h.base.tracingCollector, span, shell.StatusError, time.Since(start), err)
		return h.fallback(ctx, query, shell.SnapshotReasonDeserializeError)
	}

	finalSeq := max(maxSeq, snapshot.SequenceNumber)
	result := ProjectOnto(base, domainEvents, query, finalSeq)

	if len(domainEvents) > 0 {
		h.save(ctx, query, filter, result)
	}

	shell.LogInfo(ctx, h.base.logger, h.base.contextualLogger, shell.LogMsgSnapshotHit,
		shell.LogAttrFromSequence, snapshot.SequenceNumber,
		shell.LogAttrToSequence, finalSeq,
		shell.LogAttrEventCount, len(domainEvents))
	shell.RecordQuerySnapshot(ctx, h.base.metricsCollector, query.QueryType(), shell.SnapshotReasonHit)
	h.base.recordQuerySuccess(ctx, query, result, time.Since(start), span)

	return result, nil
}

// fallback answers with a full query and stores its result as the new snapshot.
func (h SnapshotQueryHandler) fallback(ctx context.Context, query Query, reason string) (Result, error) {
	shell.RecordQuerySnapshot(ctx, h.base.metricsCollector, query.QueryType(), reason)

	result, err := h.base.Handle(ctx, query)
	if err != nil {
		return Result{}, err
	}

	if result.SequenceNumber > 0 {
		h.save(ctx, query, BuildEventFilter(query), result)
	}

	return result, nil
}

// save stores the result. Failures are logged only, the next query simply misses.
func (h SnapshotQueryHandler) save(ctx context.Context, query Query, filter eventstore.Filter, result Result) {
	data, err := jsoniter.ConfigFastest.Marshal(result)
	if err != nil {
		h.logSaveError(ctx, "json serialization", err)
		return
	}

	snapshot, err := eventstore.BuildSnapshot(query.QueryType(), filter, result.SequenceNumber, data)
	if err != nil {
		h.logSaveError(ctx, "snapshot build", err)
		return
	}

	if err = h.store.SaveSnapshot(ctx, snapshot); err != nil {
		h.logSaveError(ctx, "snapshot save", err)
		return
	}

	shell.LogInfo(ctx, h.base.logger, h.base.contextualLogger, shell.LogMsgSnapshotSaved,
		shell.LogAttrToSequence, result.SequenceNumber)
}

func (h SnapshotQueryHandler) logSaveError(ctx context.Context, operation string, err error) {
	shell.LogError(ctx, h.base.logger, h.base.contextualLogger, shell.LogMsgSnapshotSaveError,
		shell.LogAttrOperation, operation, shell.LogAttrError, err.Error())
}
