// Package roster owns the users of the library and the books each of them currently holds.
//
// Entries in a user's borrowed list are snapshots of book data taken at borrow time.
// Like the catalog, the roster reports nothing for unknown users or titles, and it is not
// safe for concurrent use on its own.
package roster

import (
	"slices"

	"github.com/AntonStoeckl/library-coordination-go/library/core"
)

// Roster holds users in registration order.
type Roster struct {
	users []core.User
}

// New creates a Roster from copies of the seed users.
func New(users ...core.User) *Roster {
	r := &Roster{users: make([]core.User, 0, len(users))}
	for _, u := range users {
		r.users = append(r.users, u.Clone())
	}

	return r
}

// RecordBorrow appends book to the named user's borrowed list. Unknown users are ignored.
func (r *Roster) RecordBorrow(userName string, book core.Book) {
	i := r.indexOf(userName)
	if i < 0 {
		return
	}

	r.users[i].BorrowedBooks = append(r.users[i].BorrowedBooks, book)
}

// RecordReturn removes the first entry titled bookTitle from the named user's borrowed list.
// Unknown users and titles the user doesn't hold are ignored.
func (r *Roster) RecordReturn(userName string, bookTitle string) {
	i := r.indexOf(userName)
	if i < 0 {
		return
	}

	borrowed := r.users[i].BorrowedBooks
	j := slices.IndexFunc(borrowed, func(b core.Book) bool { return b.Title == bookTitle })
	if j < 0 {
		return
	}

	r.users[i].BorrowedBooks = slices.Delete(borrowed, j, j+1)
}

// HasUser reports whether a user with exactly this name is registered.
func (r *Roster) HasUser(userName string) bool {
	return r.indexOf(userName) >= 0
}

// Holds reports whether the named user's borrowed list contains a book with exactly this title.
func (r *Roster) Holds(userName string, bookTitle string) bool {
	i := r.indexOf(userName)
	if i < 0 {
		return false
	}

	return slices.ContainsFunc(r.users[i].BorrowedBooks, func(b core.Book) bool { return b.Title == bookTitle })
}

// BorrowedBooks returns a copy of the named user's borrowed list.
func (r *Roster) BorrowedBooks(userName string) ([]core.Book, bool) {
	i := r.indexOf(userName)
	if i < 0 {
		return nil, false
	}

	return r.users[i].Clone().BorrowedBooks, true
}

// Users returns copies of all users in registration order.
func (r *Roster) Users() []core.User {
	users := make([]core.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u.Clone())
	}

	return users
}

func (r *Roster) indexOf(userName string) int {
	return slices.IndexFunc(r.users, func(u core.User) bool { return u.Name == userName })
}
