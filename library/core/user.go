package core

import "slices"

// User is identified by its name, which is unique within a roster.
// BorrowedBooks holds snapshots taken at borrow time, not live catalog entries.
type User struct {
	Name          string
	BorrowedBooks []Book
}

// BuildUser creates a User without borrowed books.
func BuildUser(name string) User {
	return User{
		Name:          name,
		BorrowedBooks: []Book{},
	}
}

// Clone returns a deep copy so callers can't reach into the owner's state.
func (u User) Clone() User {
	borrowed := slices.Clone(u.BorrowedBooks)
	if borrowed == nil {
		borrowed = []Book{}
	}

	return User{
		Name:          u.Name,
		BorrowedBooks: borrowed,
	}
}
