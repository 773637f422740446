// Package history is the lending history of one user, projected from the lending journal.
//
// It lists every borrow and return attempt of the user in journal order, refusals included,
// and derives the titles the user currently holds.
package history
