package shell

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	// JournalRetriesMetric counts retried journal appends by command type and attempt.
	JournalRetriesMetric = "library_journal_retries_total"

	// JournalRetriesExhaustedMetric counts commands whose journal append kept conflicting.
	JournalRetriesExhaustedMetric = "library_journal_retries_exhausted_total"

	defaultMaxAttempts  = 3
	defaultBaseDelay    = time.Millisecond
	defaultJitterFactor = 0.3

	labelAttempt = "attempt"
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt of a journal write.
type RetryableFunc func(ctx context.Context) error

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector MetricsCollector
	commandType      string
}

// RetryOnConcurrencyConflict runs fn until it succeeds, fails with anything but
// eventstore.ErrConcurrencyConflict, or runs out of attempts. Delays double per attempt
// (1 ms, 2 ms, ... by default) plus jitter. Cancellation of ctx ends the wait early.
func RetryOnConcurrencyConflict(ctx context.Context, fn RetryableFunc, options ...RetryOption) error {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return err
		}
	}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			delay += time.Duration(rand.Float64() * float64(delay) * config.jitterFactor) //nolint:gosec

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil || !IsConcurrencyConflictError(lastErr) {
			return lastErr
		}

		if attempt < config.maxAttempts-1 {
			config.count(ctx, JournalRetriesMetric, map[string]string{
				LogAttrCommandType: config.commandType,
				labelAttempt:       strconv.Itoa(attempt + 1),
			})
		}
	}

	config.count(ctx, JournalRetriesExhaustedMetric, map[string]string{LogAttrCommandType: config.commandType})

	return lastErr
}

func (c *retryConfig) count(ctx context.Context, metric string, labels map[string]string) {
	if c.metricsCollector == nil {
		return
	}

	incrementCounter(ctx, c.metricsCollector, metric, labels)
}

// RetryOption configures retry behavior.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the delay before the first retry.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter as a fraction of the delay, 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryMetrics sets the metrics collector for retry instrumentation, labeled by commandType.
// A nil collector disables retry metrics.
func WithRetryMetrics(collector MetricsCollector, commandType string) RetryOption {
	return func(config *retryConfig) error {
		config.metricsCollector = collector
		config.commandType = commandType

		return nil
	}
}
