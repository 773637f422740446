package memengine

import (
	"errors"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
)

// ErrNilOption is returned when an option receives a nil dependency.
var ErrNilOption = errors.New("option value must not be nil")

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithLogger sets the logger for the EventStore.
//
// Debug level: every query and append with timing
// Info level: concurrency conflicts
// Error level: canceled operations
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		if logger == nil {
			return ErrNilOption
		}

		es.logger = logger

		return nil
	}
}

// WithContextualLogger sets a context-aware logger, preferred over the plain logger when both are set.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		if logger == nil {
			return ErrNilOption
		}

		es.contextualLogger = logger

		return nil
	}
}

// WithMetrics sets the metrics collector for the EventStore.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		if collector == nil {
			return ErrNilOption
		}

		es.metricsCollector = collector

		return nil
	}
}
