package core

import (
	"time"
)

// BookBorrowedByUserEventType is the event type identifier.
const BookBorrowedByUserEventType = "BookBorrowedByUser"

// BookBorrowedByUser represents when a user borrows a book from the catalog.
type BookBorrowedByUser struct {
	Title      TitleString
	Author     string
	UserName   UserNameString
	OccurredAt OccurredAtTS
}

// BuildBookBorrowedByUser creates a new BookBorrowedByUser event.
func BuildBookBorrowedByUser(title string, author string, userName string, occurredAt time.Time) BookBorrowedByUser {
	return BookBorrowedByUser{
		Title:      title,
		Author:     author,
		UserName:   userName,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookBorrowedByUser) IsEventType() string {
	return BookBorrowedByUserEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookBorrowedByUser) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns false since this event represents a successful operation.
func (e BookBorrowedByUser) IsErrorEvent() bool {
	return false
}
