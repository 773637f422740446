package coordinator

import (
	"errors"
	"fmt"

	"github.com/AntonStoeckl/library-coordination-go/library/core"
)

// CheckConsistency verifies that for every title the number of unavailable catalog copies equals
// the number of copies held by users, and that nobody holds a title unknown to the catalog.
// It returns nil or core.ErrInconsistentState joined with one error per offending title.
func (c *Coordinator) CheckConsistency() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	unavailable := make(map[core.TitleString]int)
	known := make(map[core.TitleString]bool)
	titles := make([]core.TitleString, 0)

	for _, book := range c.catalog.Books() {
		if !known[book.Title] {
			known[book.Title] = true
			titles = append(titles, book.Title)
		}
		if !book.IsAvailable {
			unavailable[book.Title]++
		}
	}

	held := make(map[core.TitleString]int)
	for _, user := range c.roster.Users() {
		for _, book := range user.BorrowedBooks {
			held[book.Title]++
			if !known[book.Title] {
				known[book.Title] = true
				titles = append(titles, book.Title)
			}
		}
	}

	var errs []error
	for _, title := range titles {
		if unavailable[title] != held[title] {
			errs = append(errs, fmt.Errorf("%w: %q has %d unavailable copies but %d holders",
				core.ErrInconsistentState, title, unavailable[title], held[title]))
		}
	}

	return errors.Join(errs...)
}
