// Package testdoubles provides spies for the observability interfaces.
//
// The spies record every call so tests can assert on the logs, metrics and spans that
// the coordinator and the journal engines produce.
package testdoubles
