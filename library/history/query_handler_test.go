package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/eventstore/memengine"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
	"github.com/AntonStoeckl/library-coordination-go/library/history"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
	"github.com/AntonStoeckl/library-coordination-go/testutil/testdoubles"
)

func Test_QueryHandler_Handle_ProjectsOnlyTheQueriedUser(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := givenJournal(t,
		core.BuildBookBorrowedByUser("1984", "George Orwell", "Alice", time.Now()),
		core.BuildBookBorrowedByUser("Emma", "Jane Austen", "Bob", time.Now()),
		core.BuildBookReturnedByUser("1984", "Alice", time.Now()),
	)
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()
	handler, err := history.NewQueryHandler(
		es,
		history.WithMetrics(metrics),
		history.WithTracing(tracing),
		history.WithContextualLogging(logger),
	)
	require.NoError(t, err)
	query, err := history.BuildQuery("Alice")
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, query)

	// assert
	require.NoError(t, err)
	assert.Len(t, result.Entries, 2)
	assert.Empty(t, result.CurrentlyBorrowed)
	assert.Equal(t, uint(3), result.SequenceNumber)
	assert.True(t, metrics.HasCounterRecord(shell.QueryCallsMetric, shell.BuildQueryLabels("LendingHistory", shell.StatusSuccess)))
	assert.True(t, logger.HasRecord("info", shell.LogMsgQueryCompleted))
	require.Len(t, tracing.Spans(), 1)
	assert.Equal(t, shell.StatusSuccess, tracing.Spans()[0].Status)
}

func Test_QueryHandler_Handle_CanceledContext(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	metrics := testdoubles.NewMetricsCollectorSpy()
	handler, err := history.NewQueryHandler(givenJournal(t), history.WithMetrics(metrics))
	require.NoError(t, err)

	// act
	_, err = handler.Handle(ctx, history.Query{UserName: "Alice"})

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, metrics.HasCounterRecord(shell.QueryCallsMetric, shell.BuildQueryLabels("LendingHistory", shell.StatusCanceled)))
}

func givenJournal(t *testing.T, events ...core.DomainEvent) *memengine.EventStore {
	t.Helper()

	es, err := memengine.NewEventStore()
	require.NoError(t, err)

	for _, event := range events {
		storableEvent, err := shell.StorableEventWithEmptyMetadataFrom(event)
		require.NoError(t, err)

		_, maxSeq, err := es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())
		require.NoError(t, err)
		require.NoError(t, es.Append(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent(), maxSeq, storableEvent))
	}

	return es
}
