package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
)

func Test_Filter_Matches(t *testing.T) {
	borrowed := givenStorableEvent(t, "BookBorrowedByUser", `{"UserName":"Alice","Title":"1984"}`)
	returned := givenStorableEvent(t, "BookReturnedByUser", `{"UserName":"Bob","Title":"1984"}`)
	notAnObject := givenStorableEvent(t, "BookBorrowedByUser", `["Alice"]`)

	tests := []struct {
		name   string
		filter eventstore.Filter
		event  eventstore.StorableEvent
		want   bool
	}{
		{
			name:   "empty filter matches everything",
			filter: eventstore.BuildEventFilter().MatchingAnyEvent(),
			event:  returned,
			want:   true,
		},
		{
			name:   "event type only",
			filter: eventstore.BuildEventFilter().Matching().AnyEventTypeOf("BookReturnedByUser").Finalize(),
			event:  borrowed,
			want:   false,
		},
		{
			name: "event type and any predicate",
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyEventTypeOf("BookBorrowedByUser").
				AndAnyPredicateOf(eventstore.P("UserName", "Bob"), eventstore.P("Title", "1984")).
				Finalize(),
			event: borrowed,
			want:  true,
		},
		{
			name: "all predicates must match",
			filter: eventstore.BuildEventFilter().
				Matching().
				AllPredicatesOf(eventstore.P("UserName", "Bob"), eventstore.P("Title", "1984")).
				Finalize(),
			event: borrowed,
			want:  false,
		},
		{
			name: "second item matches",
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyPredicateOf(eventstore.P("UserName", "Carol")).
				OrMatching().
				AnyEventTypeOf("BookReturnedByUser").
				Finalize(),
			event: returned,
			want:  true,
		},
		{
			name: "payload that is not an object never matches predicates",
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyPredicateOf(eventstore.P("UserName", "Alice")).
				Finalize(),
			event: notAnObject,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.event))
		})
	}
}

func givenStorableEvent(t *testing.T, eventType string, payload string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(payload))
	require.NoError(t, err)

	return event
}
