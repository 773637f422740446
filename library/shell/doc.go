// Package shell holds the imperative glue around the library core: mapping domain events to and
// from journal events, event metadata, and the logging/metrics/tracing helpers the coordinator
// and the query handlers share.
package shell
