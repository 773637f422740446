// Package coordinator is the library front desk: one facade over the catalog and the roster.
//
// The Coordinator is the only place where both are mutated, so it keeps the library
// invariant: a book is unavailable in the catalog exactly when some user holds it.
// All operations are serialized by one mutex and a borrow or return either fully
// happens or leaves no trace.
//
// Refusals are reported as sentinel errors from the core package:
//
//	err := c.BorrowBook(ctx, "Bob", "1984")
//	if errors.Is(err, core.ErrBookAlreadyBorrowed) {
//		// someone else has it
//	}
//
// With WithJournal every outcome, refusals included, is appended to a lending journal
// and can be read back per user with History.
package coordinator
