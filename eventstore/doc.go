// Package eventstore provides the core abstractions of the lending journal:
// filters, storable events, and the observability interfaces engines report through.
//
// A journal records what happened at the library desk (books borrowed, books returned,
// failed attempts) as an append-only sequence of events. Readers select a
// "dynamic event stream" with a Filter:
//   - Event types
//   - JSON payload predicates (top-level string fields)
//
// Common usage pattern:
//
//	filter := BuildEventFilter().
//		Matching().
//		AnyEventTypeOf(
//			core.BookBorrowedByUserEventType,
//			core.BookReturnedByUserEventType).
//		AndAnyPredicateOf(P("UserName", "Alice")).
//		Finalize()
//
//	events, maxSeq, err := journal.Query(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	newEvent, err := eventstore.BuildStorableEvent(eventType, time.Now(), payload, metadata)
//	err = journal.Append(ctx, filter, maxSeq, newEvent)
package eventstore
