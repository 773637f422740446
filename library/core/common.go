package core

import (
	"time"
)

// TitleString represents a book title, the key of a book in the catalog
type TitleString = string

// UserNameString represents a user name, the key of a user in the roster
type UserNameString = string

// OccurredAtTS represents when an event occurred
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}
