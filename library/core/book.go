package core

// Book is identified by its title, which is unique within a catalog.
type Book struct {
	Title       string
	Author      string
	IsAvailable bool
}

// BuildBook creates an available Book.
func BuildBook(title string, author string) Book {
	return Book{
		Title:       title,
		Author:      author,
		IsAvailable: true,
	}
}

// BuildBorrowedRecord creates the snapshot of a book that a roster keeps for the borrowing user.
func BuildBorrowedRecord(title string, author string) Book {
	return Book{
		Title:       title,
		Author:      author,
		IsAvailable: false,
	}
}
