package coordinator

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-coordination-go/library/history"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
)

// Option defines a functional option for configuring the Coordinator.
type Option func(*Coordinator) error

// WithJournal records every borrow and return outcome in the given journal.
func WithJournal(journal Journal) Option {
	return func(c *Coordinator) error {
		if journal == nil {
			return ErrNilOption
		}

		c.journal = journal

		return nil
	}
}

// WithLogger sets the logger for the Coordinator.
//
// Debug level: command start
// Info level: successful borrows and returns
// Warn level: refusals
// Error level: journal failures, inconsistencies
func WithLogger(logger shell.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			return ErrNilOption
		}

		c.logger = logger

		return nil
	}
}

// WithContextualLogger sets a context-aware logger, preferred over the plain logger when both are set.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			return ErrNilOption
		}

		c.contextualLogger = logger

		return nil
	}
}

// WithMetrics sets the metrics collector for command metrics and the borrowed-books gauge.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(c *Coordinator) error {
		if collector == nil {
			return ErrNilOption
		}

		c.metricsCollector = collector

		return nil
	}
}

// WithTracing sets the tracing collector, one span per borrow or return.
func WithTracing(collector shell.TracingCollector) Option {
	return func(c *Coordinator) error {
		if collector == nil {
			return ErrNilOption
		}

		c.tracingCollector = collector

		return nil
	}
}

// WithClock replaces time.Now as the source of event timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) error {
		if now == nil {
			return ErrNilOption
		}

		c.now = now

		return nil
	}
}

// WithCorrelationID sets the correlation ID stamped on every journal event. Defaults to a random UUID per Coordinator.
func WithCorrelationID(correlationID uuid.UUID) Option {
	return func(c *Coordinator) error {
		c.correlationID = correlationID
		return nil
	}
}

// historyOptions passes the coordinator's observability on to the history query handler.
func (c *Coordinator) historyOptions() []history.Option {
	var opts []history.Option

	if c.metricsCollector != nil {
		opts = append(opts, history.WithMetrics(c.metricsCollector))
	}
	if c.tracingCollector != nil {
		opts = append(opts, history.WithTracing(c.tracingCollector))
	}
	if c.contextualLogger != nil {
		opts = append(opts, history.WithContextualLogging(c.contextualLogger))
	}
	if c.logger != nil {
		opts = append(opts, history.WithLogging(c.logger))
	}

	return opts
}
