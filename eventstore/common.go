package eventstore

import (
	"errors"
)

var (
	// ErrConcurrencyConflict is returned by Append when the journal has moved past the expected sequence number.
	ErrConcurrencyConflict = errors.New("concurrency error, journal advanced past the expected sequence number")

	// ErrQueryingEventsFailed wraps failures while reading the journal.
	ErrQueryingEventsFailed = errors.New("querying events failed")

	// ErrAppendingEventFailed wraps failures while writing to the journal.
	ErrAppendingEventFailed = errors.New("appending event failed")

	// ErrEmptyEventType is returned when a storable event has no event type.
	ErrEmptyEventType = errors.New("event type must not be empty")
)

// MaxSequenceNumberUint is a type alias for uint, representing the maximum sequence number for a "dynamic event stream".
type MaxSequenceNumberUint = uint
