// Command librarysim drives a library coordinator from the command line.
//
//	librarysim run  [--seed seed.yaml]             replays the scenario of a seed file
//	librarysim load [--users N] [--rounds M]       lets N concurrent users borrow and return random books
//
// Both commands finish by verifying that the catalog and the roster agree about every book,
// and by printing a summary of the collected metrics when a metrics backend is selected.
package main
