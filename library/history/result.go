package history

import (
	"time"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
)

// Entry is one borrow or return attempt.
type Entry struct {
	EventType   string
	Title       core.TitleString
	OccurredAt  time.Time
	Refused     bool
	FailureInfo string
}

// Result is the lending history of one user.
type Result struct {
	UserName          core.UserNameString
	Entries           []Entry
	CurrentlyBorrowed []core.TitleString
	SequenceNumber    eventstore.MaxSequenceNumberUint
}
