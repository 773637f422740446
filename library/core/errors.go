package core

import "errors"

var (
	// ErrBookNotFound is returned when no book with the exact title exists in the catalog.
	ErrBookNotFound = errors.New("book is not in the catalog")

	// ErrBookAlreadyBorrowed is returned when the book exists but is not available.
	ErrBookAlreadyBorrowed = errors.New("book is already borrowed")

	// ErrUserNotFound is returned when no user with the exact name exists in the roster.
	ErrUserNotFound = errors.New("user is not registered")

	// ErrBookNotBorrowedByUser is returned when a user returns a book they don't hold.
	ErrBookNotBorrowedByUser = errors.New("book is not borrowed by this user")

	// ErrEmptyTitle is returned for operations keyed by an empty title.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrEmptyUserName is returned for operations keyed by an empty user name.
	ErrEmptyUserName = errors.New("user name must not be empty")

	// ErrInconsistentState is returned when the catalog and the roster disagree about a book.
	ErrInconsistentState = errors.New("catalog and roster disagree")
)
