package memengine

import (
	"context"
	"errors"
	"slices"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
)

const (
	logMsgSnapshotSaved = "snapshot saved"
	logAttrProjection   = "projection_type"
	logAttrSequence     = "sequence_number"
	operationSaveSnap   = "save_snapshot"
	operationLoadSnap   = "load_snapshot"
)

type snapshotKey struct {
	projectionType string
	filterHash     string
}

// SaveSnapshot stores the snapshot, replacing any earlier one for the same projection type and filter.
// A snapshot never replaces a newer one.
func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := ctx.Err(); err != nil {
		es.logError(ctx, operationSaveSnap, err)
		return errors.Join(eventstore.ErrSavingSnapshotFailed, err)
	}

	if err := snapshot.Validate(); err != nil {
		return errors.Join(eventstore.ErrSavingSnapshotFailed, err)
	}

	key := snapshotKey{projectionType: snapshot.ProjectionType, filterHash: snapshot.FilterHash}
	snapshot.Data = slices.Clone(snapshot.Data)

	es.snapshotsMu.Lock()
	if existing, ok := es.snapshots[key]; !ok || existing.SequenceNumber <= snapshot.SequenceNumber {
		es.snapshots[key] = snapshot
	}
	es.snapshotsMu.Unlock()

	es.logDebug(ctx, logMsgSnapshotSaved, logAttrProjection, snapshot.ProjectionType, logAttrSequence, snapshot.SequenceNumber)

	return nil
}

// LoadSnapshot returns the snapshot for the projection type and filter, or nil if there is none.
func (es *EventStore) LoadSnapshot(
	ctx context.Context,
	projectionType string,
	filter eventstore.Filter,
) (*eventstore.Snapshot, error) {

	if err := ctx.Err(); err != nil {
		es.logError(ctx, operationLoadSnap, err)
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, err)
	}

	if projectionType == "" {
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrEmptyProjectionType)
	}

	es.snapshotsMu.RLock()
	snapshot, ok := es.snapshots[snapshotKey{projectionType: projectionType, filterHash: filter.Hash()}]
	es.snapshotsMu.RUnlock()

	if !ok {
		return nil, nil
	}

	snapshot.Data = slices.Clone(snapshot.Data)

	return &snapshot, nil
}

// DeleteSnapshot removes the snapshot for the projection type and filter. Missing snapshots are ignored.
func (es *EventStore) DeleteSnapshot(projectionType string, filter eventstore.Filter) {
	es.snapshotsMu.Lock()
	delete(es.snapshots, snapshotKey{projectionType: projectionType, filterHash: filter.Hash()})
	es.snapshotsMu.Unlock()
}
