package coordinator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/eventstore/memengine"
	"github.com/AntonStoeckl/library-coordination-go/library/coordinator"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
	"github.com/AntonStoeckl/library-coordination-go/testutil/testdoubles"
)

func Test_Coordinator_WithJournal_RecordsEveryOutcome(t *testing.T) {
	// arrange
	ctx := context.Background()
	fixedNow := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	correlationID := uuid.New()
	journal, err := memengine.NewEventStore()
	require.NoError(t, err)
	c := givenScenarioCoordinator(t,
		coordinator.WithJournal(journal),
		coordinator.WithClock(func() time.Time { return fixedNow }),
		coordinator.WithCorrelationID(correlationID),
	)

	// act
	require.Error(t, c.BorrowBook(ctx, "Bob", "1984"))
	require.NoError(t, c.BorrowBook(ctx, "Alice", "To Kill a Mockingbird"))
	require.NoError(t, c.ReturnBook(ctx, "Alice", "To Kill a Mockingbird"))
	require.Error(t, c.ReturnBook(ctx, "Alice", "To Kill a Mockingbird"))

	// assert
	storableEvents, maxSeq, err := journal.Query(ctx, eventstore.BuildEventFilter().MatchingAnyEvent())
	require.NoError(t, err)
	assert.Equal(t, uint(4), maxSeq)

	domainEvents, err := shell.DomainEventsFrom(storableEvents)
	require.NoError(t, err)
	assert.Equal(t, core.DomainEvents{
		core.BuildBorrowingBookFailed("1984", "Bob", core.ErrBookAlreadyBorrowed.Error(), fixedNow),
		core.BuildBookBorrowedByUser("To Kill a Mockingbird", "Harper Lee", "Alice", fixedNow),
		core.BuildBookReturnedByUser("To Kill a Mockingbird", "Alice", fixedNow),
		core.BuildReturningBookFailed("To Kill a Mockingbird", "Alice", core.ErrBookNotBorrowedByUser.Error(), fixedNow),
	}, domainEvents)

	metadata, err := shell.EventMetadataFrom(storableEvents[0])
	require.NoError(t, err)
	assert.Equal(t, correlationID.String(), metadata.CorrelationID)
}

func Test_Coordinator_History(t *testing.T) {
	// arrange
	ctx := context.Background()
	journal, err := memengine.NewEventStore()
	require.NoError(t, err)
	c := givenScenarioCoordinator(t, coordinator.WithJournal(journal))
	require.NoError(t, c.BorrowBook(ctx, "Alice", "The Great Gatsby"))
	require.NoError(t, c.BorrowBook(ctx, "Alice", "To Kill a Mockingbird"))
	require.NoError(t, c.ReturnBook(ctx, "Alice", "The Great Gatsby"))
	require.Error(t, c.BorrowBook(ctx, "Bob", "To Kill a Mockingbird"))

	// act
	aliceHistory, err := c.History(ctx, "Alice")
	require.NoError(t, err)
	bobHistory, err := c.History(ctx, "Bob")
	require.NoError(t, err)

	// assert
	assert.Len(t, aliceHistory.Entries, 3)
	assert.Equal(t, []string{"To Kill a Mockingbird"}, aliceHistory.CurrentlyBorrowed)
	require.Len(t, bobHistory.Entries, 1)
	assert.True(t, bobHistory.Entries[0].Refused)
	assert.Empty(t, bobHistory.CurrentlyBorrowed)
}

func Test_Coordinator_History_UsesSnapshotsOfTheJournal(t *testing.T) {
	// arrange
	ctx := context.Background()
	journal, err := memengine.NewEventStore()
	require.NoError(t, err)
	metrics := testdoubles.NewMetricsCollectorSpy()
	c := givenScenarioCoordinator(t, coordinator.WithJournal(journal), coordinator.WithMetrics(metrics))
	require.NoError(t, c.BorrowBook(ctx, "Alice", "The Great Gatsby"))
	_, err = c.History(ctx, "Alice")
	require.NoError(t, err)
	require.NoError(t, c.ReturnBook(ctx, "Alice", "The Great Gatsby"))

	// act
	result, err := c.History(ctx, "Alice")

	// assert
	require.NoError(t, err)
	assert.Len(t, result.Entries, 2)
	assert.Empty(t, result.CurrentlyBorrowed)
	assert.True(t, metrics.HasCounterRecord(shell.QuerySnapshotsMetric, map[string]string{shell.LogAttrSnapshotReason: shell.SnapshotReasonMiss}))
	assert.True(t, metrics.HasCounterRecord(shell.QuerySnapshotsMetric, map[string]string{shell.LogAttrSnapshotReason: shell.SnapshotReasonHit}))
}

func Test_Coordinator_History_WithoutJournal(t *testing.T) {
	// arrange
	c := givenScenarioCoordinator(t)

	// act
	_, err := c.History(context.Background(), "Alice")

	// assert
	assert.ErrorIs(t, err, coordinator.ErrJournalDisabled)
}

func Test_Coordinator_JournalFailureLeavesStateUntouched(t *testing.T) {
	// arrange
	ctx := context.Background()
	c := givenScenarioCoordinator(t, coordinator.WithJournal(failingJournal{}))

	// act
	err := c.BorrowBook(ctx, "Alice", "The Great Gatsby")

	// assert
	assert.ErrorIs(t, err, coordinator.ErrJournalAppendFailed)
	assert.ErrorIs(t, err, errJournalDown)
	assert.True(t, c.CheckAvailability("The Great Gatsby"))
	assertBorrowedTitles(t, c, "Alice")
}

func Test_Coordinator_JournalFailureOnRefusalKeepsRefusal(t *testing.T) {
	// arrange
	c := givenScenarioCoordinator(t, coordinator.WithJournal(failingJournal{}))

	// act
	err := c.BorrowBook(context.Background(), "Bob", "1984")

	// assert
	assert.ErrorIs(t, err, core.ErrBookAlreadyBorrowed)
	assert.NotErrorIs(t, err, coordinator.ErrJournalAppendFailed)
}

func Test_Coordinator_RetriesJournalConflicts(t *testing.T) {
	// arrange
	journal, err := memengine.NewEventStore()
	require.NoError(t, err)
	flaky := &conflictingOnceJournal{EventStore: journal}
	c := givenScenarioCoordinator(t, coordinator.WithJournal(flaky))

	// act
	err = c.BorrowBook(context.Background(), "Alice", "The Great Gatsby")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, flaky.appends)
	assert.False(t, c.CheckAvailability("The Great Gatsby"))
}

var errJournalDown = errors.New("journal is down")

type failingJournal struct{}

func (failingJournal) Query(context.Context, eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error) {
	return nil, 0, errJournalDown
}

func (failingJournal) Append(context.Context, eventstore.Filter, eventstore.MaxSequenceNumberUint, eventstore.StorableEvent, ...eventstore.StorableEvent) error {
	return errJournalDown
}

// conflictingOnceJournal reports a concurrency conflict for the first append.
type conflictingOnceJournal struct {
	*memengine.EventStore
	appends int
}

func (j *conflictingOnceJournal) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expected eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	more ...eventstore.StorableEvent,
) error {

	j.appends++
	if j.appends == 1 {
		return eventstore.ErrConcurrencyConflict
	}

	return j.EventStore.Append(ctx, filter, expected, event, more...)
}
