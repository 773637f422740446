package history

import (
	"slices"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
)

// Project folds the journal events of a user into a Result. Events of other users are skipped,
// so the full journal can be passed as well.
//
// CurrentlyBorrowed mirrors the roster: borrowed titles in borrow order, a return removes the
// first matching title.
func Project(history core.DomainEvents, query Query, maxSequenceNumber eventstore.MaxSequenceNumberUint) Result {
	return ProjectOnto(Result{}, history, query, maxSequenceNumber)
}

// ProjectOnto continues a projection: it folds events that came after base into a copy of base.
func ProjectOnto(
	base Result,
	history core.DomainEvents,
	query Query,
	maxSequenceNumber eventstore.MaxSequenceNumberUint,
) Result {
	entries := make([]Entry, 0, len(base.Entries)+len(history))
	entries = append(entries, base.Entries...)
	borrowed := make([]core.TitleString, 0, len(base.CurrentlyBorrowed))
	borrowed = append(borrowed, base.CurrentlyBorrowed...)

	for _, event := range history {
		switch e := event.(type) {
		case core.BookBorrowedByUser:
			if e.UserName != query.UserName {
				continue
			}
			entries = append(entries, Entry{EventType: e.IsEventType(), Title: e.Title, OccurredAt: e.OccurredAt})
			borrowed = append(borrowed, e.Title)

		case core.BookReturnedByUser:
			if e.UserName != query.UserName {
				continue
			}
			entries = append(entries, Entry{EventType: e.IsEventType(), Title: e.Title, OccurredAt: e.OccurredAt})
			if i := slices.Index(borrowed, e.Title); i >= 0 {
				borrowed = slices.Delete(borrowed, i, i+1)
			}

		case core.BorrowingBookFailed:
			if e.UserName != query.UserName {
				continue
			}
			entries = append(entries, refusedEntry(e, e.Title, e.FailureInfo, e.OccurredAt))

		case core.ReturningBookFailed:
			if e.UserName != query.UserName {
				continue
			}
			entries = append(entries, refusedEntry(e, e.Title, e.FailureInfo, e.OccurredAt))
		}
	}

	return Result{
		UserName:          query.UserName,
		Entries:           entries,
		CurrentlyBorrowed: borrowed,
		SequenceNumber:    maxSequenceNumber,
	}
}

// BuildEventFilter selects every lending event of the user.
func BuildEventFilter(query Query) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.BookBorrowedByUserEventType,
			core.BookReturnedByUserEventType,
			core.BorrowingBookFailedEventType,
			core.ReturningBookFailedEventType,
		).
		AndAnyPredicateOf(
			eventstore.P("UserName", query.UserName),
		).
		Finalize()
}

func refusedEntry(event core.DomainEvent, title, failureInfo string, occurredAt core.OccurredAtTS) Entry {
	return Entry{
		EventType:   event.IsEventType(),
		Title:       title,
		OccurredAt:  occurredAt,
		Refused:     true,
		FailureInfo: failureInfo,
	}
}
