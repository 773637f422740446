package core

import (
	"time"
)

// ReturningBookFailedEventType is the event type identifier.
const ReturningBookFailedEventType = "ReturningBookFailed"

// ReturningBookFailed represents a refused return, e.g. the user doesn't hold the book.
type ReturningBookFailed struct {
	Title       TitleString
	UserName    UserNameString
	FailureInfo string
	OccurredAt  OccurredAtTS
}

// BuildReturningBookFailed creates a new ReturningBookFailed event.
func BuildReturningBookFailed(title string, userName string, failureInfo string, occurredAt time.Time) ReturningBookFailed {
	return ReturningBookFailed{
		Title:       title,
		UserName:    userName,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ReturningBookFailed) IsEventType() string {
	return ReturningBookFailedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ReturningBookFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failure condition.
func (e ReturningBookFailed) IsErrorEvent() bool {
	return true
}
