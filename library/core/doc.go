// Package core contains the value types, errors and domain events of the library desk.
//
// Book and User are plain values: the catalog owns the books and their availability flags,
// the roster owns the users and the books they currently hold. Domain events describe what
// happened at the desk (BookBorrowedByUser, BookReturnedByUser) and what was refused
// (BorrowingBookFailed, ReturningBookFailed), so they can be recorded in the lending journal.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
