package core

import (
	"time"
)

// BorrowingBookFailedEventType is the event type identifier.
const BorrowingBookFailedEventType = "BorrowingBookFailed"

// BorrowingBookFailed represents a refused borrow, e.g. the book is already borrowed.
type BorrowingBookFailed struct {
	Title       TitleString
	UserName    UserNameString
	FailureInfo string
	OccurredAt  OccurredAtTS
}

// BuildBorrowingBookFailed creates a new BorrowingBookFailed event.
func BuildBorrowingBookFailed(title string, userName string, failureInfo string, occurredAt time.Time) BorrowingBookFailed {
	return BorrowingBookFailed{
		Title:       title,
		UserName:    userName,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BorrowingBookFailed) IsEventType() string {
	return BorrowingBookFailedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BorrowingBookFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failure condition.
func (e BorrowingBookFailed) IsErrorEvent() bool {
	return true
}
