// Package promadapters implements the metrics interface of the library with Prometheus vectors.
package promadapters
