// Package oteladapters implements the observability interfaces of the library with OpenTelemetry:
// metrics through a metric.Meter, spans through a trace.Tracer, and contextual logging through
// the otelslog bridge, the OTel log API, or any slog.Handler enriched with trace and span IDs.
//
// Providers wires an in-process MeterProvider and TracerProvider for the simulation CLI, whose
// metrics are read back with a ManualReader instead of being exported.
package oteladapters
