package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-coordination-go/library/core"
	"github.com/AntonStoeckl/library-coordination-go/library/history"
)

func Test_Project_FoldsBorrowsReturnsAndRefusals(t *testing.T) {
	// arrange
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	events := core.DomainEvents{
		core.BuildBookBorrowedByUser("1984", "George Orwell", "Alice", t0),
		core.BuildBookBorrowedByUser("Emma", "Jane Austen", "Bob", t0.Add(time.Minute)),
		core.BuildBorrowingBookFailed("Emma", "Alice", core.ErrBookAlreadyBorrowed.Error(), t0.Add(2*time.Minute)),
		core.BuildBookBorrowedByUser("Dune", "Frank Herbert", "Alice", t0.Add(3*time.Minute)),
		core.BuildBookReturnedByUser("1984", "Alice", t0.Add(4*time.Minute)),
		core.BuildReturningBookFailed("1984", "Alice", core.ErrBookNotBorrowedByUser.Error(), t0.Add(5*time.Minute)),
	}
	query := history.Query{UserName: "Alice"}

	// act
	result := history.Project(events, query, 6)

	// assert
	assert.Equal(t, "Alice", result.UserName)
	assert.Equal(t, []string{"Dune"}, result.CurrentlyBorrowed)
	assert.Equal(t, uint(6), result.SequenceNumber)
	assert.Len(t, result.Entries, 5)
	assert.Equal(t, core.BookBorrowedByUserEventType, result.Entries[0].EventType)
	assert.True(t, result.Entries[1].Refused)
	assert.Equal(t, core.ErrBookAlreadyBorrowed.Error(), result.Entries[1].FailureInfo)
	assert.Equal(t, core.BookReturnedByUserEventType, result.Entries[3].EventType)
	assert.Equal(t, core.ReturningBookFailedEventType, result.Entries[4].EventType)
}

func Test_Project_EmptyHistory(t *testing.T) {
	// act
	result := history.Project(core.DomainEvents{}, history.Query{UserName: "Carol"}, 0)

	// assert
	assert.NotNil(t, result.Entries)
	assert.Empty(t, result.Entries)
	assert.NotNil(t, result.CurrentlyBorrowed)
	assert.Empty(t, result.CurrentlyBorrowed)
}

func Test_Project_ReturnRemovesOnlyFirstOfDuplicateTitles(t *testing.T) {
	// arrange
	t0 := time.Now()
	events := core.DomainEvents{
		core.BuildBookBorrowedByUser("Emma", "Jane Austen", "Bob", t0),
		core.BuildBookBorrowedByUser("Emma", "Jane Austen", "Bob", t0),
		core.BuildBookReturnedByUser("Emma", "Bob", t0),
	}

	// act
	result := history.Project(events, history.Query{UserName: "Bob"}, 3)

	// assert
	assert.Equal(t, []string{"Emma"}, result.CurrentlyBorrowed)
}

func Test_BuildQuery_RejectsEmptyUserName(t *testing.T) {
	// act
	_, err := history.BuildQuery("")

	// assert
	assert.ErrorIs(t, err, core.ErrEmptyUserName)
}

func Test_ProjectOnto_ContinuesWithoutTouchingBase(t *testing.T) {
	// arrange
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	query := history.Query{UserName: "Alice"}
	base := history.Project(core.DomainEvents{
		core.BuildBookBorrowedByUser("1984", "George Orwell", "Alice", t0),
		core.BuildBookBorrowedByUser("Dune", "Frank Herbert", "Alice", t0),
	}, query, 2)

	// act
	next := history.ProjectOnto(base, core.DomainEvents{
		core.BuildBookReturnedByUser("1984", "Alice", t0.Add(time.Minute)),
	}, query, 3)

	// assert
	assert.Equal(t, []string{"Dune"}, next.CurrentlyBorrowed)
	assert.Len(t, next.Entries, 3)
	assert.Equal(t, uint(3), next.SequenceNumber)
	assert.Equal(t, []string{"1984", "Dune"}, base.CurrentlyBorrowed)
	assert.Len(t, base.Entries, 2)
}
