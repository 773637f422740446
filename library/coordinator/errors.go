package coordinator

import (
	"errors"

	"github.com/AntonStoeckl/library-coordination-go/library/core"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
)

var (
	// ErrNilOption is returned when an option receives a nil dependency.
	ErrNilOption = errors.New("option value must not be nil")

	// ErrNilDependency is returned when New is called without a catalog or roster.
	ErrNilDependency = errors.New("catalog and roster must not be nil")

	// ErrJournalAppendFailed wraps journal failures of a borrow or return. State is unchanged when it's returned.
	ErrJournalAppendFailed = errors.New("appending to the lending journal failed")

	// ErrJournalDisabled is returned by History when the coordinator runs without a journal.
	ErrJournalDisabled = errors.New("lending journal is not enabled")
)

// businessErrors are refusals, as opposed to technical failures.
var businessErrors = []error{
	core.ErrBookNotFound,
	core.ErrBookAlreadyBorrowed,
	core.ErrUserNotFound,
	core.ErrBookNotBorrowedByUser,
	core.ErrEmptyTitle,
	core.ErrEmptyUserName,
}

// IsRefusal reports whether err from BorrowBook or ReturnBook is a business refusal
// rather than a technical failure.
func IsRefusal(err error) bool {
	return shell.StatusFor(err, businessErrors...) == shell.StatusRejected
}
