// Package memengine provides an in-process implementation of the lending journal.
//
// Events live in memory for the lifetime of the process. The engine offers the same
// optimistic concurrency contract as a database-backed journal: Append only succeeds
// when no event matching the supplied filter was appended after the expected
// sequence number.
//
// Usage:
//
//	journal, err := memengine.NewEventStore(memengine.WithLogger(slog.Default()))
//	events, maxSeq, err := journal.Query(ctx, filter)
//	err = journal.Append(ctx, filter, maxSeq, newEvent)
package memengine
