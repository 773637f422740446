// Package catalog owns the books of the library and their availability flags.
//
// The catalog is the single source of truth for availability. It signals failures only
// through boolean results or silent no-ops; richer errors are the coordinator's job.
// A Catalog is not safe for concurrent use on its own, the coordinator serializes access.
package catalog

import (
	"slices"
	"strings"

	"github.com/AntonStoeckl/library-coordination-go/library/core"
)

// Catalog holds books in catalog order, the order of the seed list.
type Catalog struct {
	books []core.Book
}

// New creates a Catalog from a copy of the seed books.
func New(books ...core.Book) *Catalog {
	return &Catalog{books: slices.Clone(books)}
}

// SearchByTitle returns every book whose title contains substring (case-sensitive), in catalog order.
func (c *Catalog) SearchByTitle(substring string) []core.Book {
	return c.filter(func(b core.Book) bool { return strings.Contains(b.Title, substring) })
}

// SearchByAuthor returns every book whose author contains substring (case-sensitive), in catalog order.
func (c *Catalog) SearchByAuthor(substring string) []core.Book {
	return c.filter(func(b core.Book) bool { return strings.Contains(b.Author, substring) })
}

// CheckAvailability is true iff a book with exactly this title exists and is available.
func (c *Catalog) CheckAvailability(title string) bool {
	return slices.ContainsFunc(c.books, func(b core.Book) bool {
		return b.Title == title && b.IsAvailable
	})
}

// Borrow marks the first available book with exactly this title as unavailable.
// It returns false if there is no such book, either absent or already borrowed.
func (c *Catalog) Borrow(title string) bool {
	i := slices.IndexFunc(c.books, func(b core.Book) bool {
		return b.Title == title && b.IsAvailable
	})
	if i < 0 {
		return false
	}

	c.books[i].IsAvailable = false

	return true
}

// GiveBack marks the first book with exactly this title as available, whatever its current state.
// Unknown titles are ignored.
func (c *Catalog) GiveBack(title string) {
	i := slices.IndexFunc(c.books, func(b core.Book) bool { return b.Title == title })
	if i < 0 {
		return
	}

	c.books[i].IsAvailable = true
}

// Lookup returns the first book with exactly this title.
func (c *Catalog) Lookup(title string) (core.Book, bool) {
	i := slices.IndexFunc(c.books, func(b core.Book) bool { return b.Title == title })
	if i < 0 {
		return core.Book{}, false
	}

	return c.books[i], true
}

// Books returns a copy of all books in catalog order.
func (c *Catalog) Books() []core.Book {
	return slices.Clone(c.books)
}

func (c *Catalog) filter(keep func(core.Book) bool) []core.Book {
	found := make([]core.Book, 0)
	for _, b := range c.books {
		if keep(b) {
			found = append(found, b)
		}
	}

	return found
}
