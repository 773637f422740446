package coordinator

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
)

// record appends one outcome to the journal, if there is one. Must be called with c.mu held.
//
// The append is guarded by the stream of the user the event belongs to, so foreign writers
// appending for the same user cause a concurrency conflict, which is retried.
func (c *Coordinator) record(ctx context.Context, commandType string, event core.DomainEvent) error {
	if c.journal == nil {
		return nil
	}

	storableEvent, err := shell.StorableEventFrom(event, shell.BuildCommandEventMetadata(c.correlationID))
	if err != nil {
		return errors.Join(ErrJournalAppendFailed, err)
	}

	filter := streamFilter(event)

	err = shell.RetryOnConcurrencyConflict(
		ctx,
		func(ctx context.Context) error {
			_, maxSeq, err := c.journal.Query(ctx, filter)
			if err != nil {
				return err
			}

			return c.journal.Append(ctx, filter, maxSeq, storableEvent)
		},
		shell.WithRetryMetrics(c.metricsCollector, commandType),
	)
	if err != nil {
		return errors.Join(ErrJournalAppendFailed, err)
	}

	return nil
}

func streamFilter(event core.DomainEvent) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("UserName", userNameOf(event))).
		Finalize()
}

func userNameOf(event core.DomainEvent) string {
	switch e := event.(type) {
	case core.BookBorrowedByUser:
		return e.UserName
	case core.BookReturnedByUser:
		return e.UserName
	case core.BorrowingBookFailed:
		return e.UserName
	case core.ReturningBookFailed:
		return e.UserName
	default:
		return ""
	}
}
