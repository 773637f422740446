package shell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
	"github.com/AntonStoeckl/library-coordination-go/testutil/testdoubles"
)

func Test_StatusFor(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		expected    string
	}{
		{"nil", nil, shell.StatusSuccess},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), shell.StatusCanceled},
		{"timeout", context.DeadlineExceeded, shell.StatusTimeout},
		{"conflict", eventstore.ErrConcurrencyConflict, shell.StatusConcurrencyConflict},
		{"business", core.ErrBookAlreadyBorrowed, shell.StatusRejected},
		{"technical", errors.New("disk on fire"), shell.StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			status := shell.StatusFor(tc.err, core.ErrBookAlreadyBorrowed, core.ErrBookNotFound)

			// assert
			assert.Equal(t, tc.expected, status)
		})
	}
}

func Test_RecordCommandMetrics_RecordsDurationCallsAndCanceled(t *testing.T) {
	// arrange
	spy := testdoubles.NewMetricsCollectorSpy()

	// act
	shell.RecordCommandMetrics(context.Background(), spy, "BorrowBook", shell.StatusCanceled, time.Millisecond)

	// assert
	labels := shell.BuildCommandLabels("BorrowBook", shell.StatusCanceled)
	assert.True(t, spy.HasDurationRecord(shell.CommandDurationMetric, labels))
	assert.True(t, spy.HasCounterRecord(shell.CommandCallsMetric, labels))
	assert.True(t, spy.HasCounterRecord(shell.CommandCanceledMetric, labels))
	assert.False(t, spy.HasCounterRecord(shell.CommandTimeoutMetric, nil))
}

func Test_RecordCommandMetrics_NilCollectorIsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		shell.RecordCommandMetrics(context.Background(), nil, "BorrowBook", shell.StatusSuccess, time.Millisecond)
		shell.RecordBooksBorrowed(context.Background(), nil, 3)
	})
}

func Test_RecordBooksBorrowed_SetsGauge(t *testing.T) {
	// arrange
	spy := testdoubles.NewMetricsCollectorSpy()

	// act
	shell.RecordBooksBorrowed(context.Background(), spy, 2)

	// assert
	value, ok := spy.LastValue(shell.BooksBorrowedMetric)
	require.True(t, ok)
	assert.InDelta(t, 2.0, value, 0.0001)
}

func Test_CommandSpan_StartAndFinish(t *testing.T) {
	// arrange
	spy := testdoubles.NewTracingCollectorSpy()
	ctx, span := shell.StartCommandSpan(context.Background(), spy, "ReturnBook", "Alice", "1984")

	// act
	shell.FinishSpan(spy, span, shell.StatusRejected, 2*time.Millisecond, core.ErrBookNotBorrowedByUser)

	// assert
	require.NotNil(t, ctx)
	spans := spy.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, shell.SpanNameCommand, spans[0].Name)
	assert.True(t, spans[0].Finished)
	assert.Equal(t, shell.StatusRejected, spans[0].Status)
	assert.Equal(t, "Alice", spans[0].Attributes[shell.LogAttrUserName])
	assert.Equal(t, core.ErrBookNotBorrowedByUser.Error(), spans[0].Attributes[shell.LogAttrError])
}

func Test_StartCommandSpan_WithoutTracing(t *testing.T) {
	// act
	ctx, span := shell.StartCommandSpan(context.Background(), nil, "BorrowBook", "Alice", "1984")

	// assert
	assert.NotNil(t, ctx)
	assert.Nil(t, span)
}

func Test_LogHelpers_PreferContextualLogger(t *testing.T) {
	// arrange
	spy := testdoubles.NewContextualLoggerSpy()
	ctx := context.Background()

	// act
	shell.LogCommandStart(ctx, nil, spy, "BorrowBook", "Alice", "1984")
	shell.LogCommandSuccess(ctx, nil, spy, "BorrowBook", "book borrowed", time.Millisecond)
	shell.LogCommandRejected(ctx, nil, spy, "BorrowBook", core.ErrBookAlreadyBorrowed)
	shell.LogCommandError(ctx, nil, spy, "BorrowBook", errors.New("boom"))

	// assert
	assert.True(t, spy.HasRecord("debug", shell.LogMsgCommandStarted))
	assert.True(t, spy.HasRecord("info", shell.LogMsgCommandCompleted))
	assert.True(t, spy.HasRecord("warn", shell.LogMsgCommandRejected))
	assert.True(t, spy.HasRecord("error", shell.LogMsgCommandFailed))
	assert.True(t, spy.HasRecordWithAttr(shell.LogMsgCommandStarted, shell.LogAttrUserName, "Alice"))
}

func Test_RecordQuerySnapshot(t *testing.T) {
	// arrange
	spy := testdoubles.NewMetricsCollectorSpy()

	// act
	shell.RecordQuerySnapshot(context.Background(), spy, "LendingHistory", shell.SnapshotReasonHit)
	shell.RecordQuerySnapshot(context.Background(), nil, "LendingHistory", shell.SnapshotReasonHit)

	// assert
	assert.True(t, spy.HasCounterRecord(shell.QuerySnapshotsMetric, map[string]string{
		shell.LogAttrQueryType:      "LendingHistory",
		shell.LogAttrSnapshotReason: shell.SnapshotReasonHit,
	}))
}

func Test_LogInfoAndLogError_UseContextualLogger(t *testing.T) {
	// arrange
	contextual := testdoubles.NewContextualLoggerSpy()
	ctx := context.Background()

	// act
	shell.LogInfo(ctx, nil, contextual, shell.LogMsgSnapshotSaved, shell.LogAttrToSequence, 3)
	shell.LogError(ctx, nil, contextual, shell.LogMsgSnapshotSaveError)
	shell.LogInfo(ctx, nil, nil, "nobody listens")

	// assert
	assert.True(t, contextual.HasRecord("info", shell.LogMsgSnapshotSaved))
	assert.True(t, contextual.HasRecord("error", shell.LogMsgSnapshotSaveError))
}
