package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/library-coordination-go/config"
	"github.com/AntonStoeckl/library-coordination-go/eventstore/memengine"
	"github.com/AntonStoeckl/library-coordination-go/library/coordinator"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
	"github.com/AntonStoeckl/library-coordination-go/oteladapters"
	"github.com/AntonStoeckl/library-coordination-go/promadapters"
)

const serviceName = "librarysim"

// app bundles the logger and the observability backend selected by the config.
type app struct {
	cfg     config.Config
	logger  shell.ContextualLogger
	metrics shell.MetricsCollector
	tracing shell.TracingCollector
	report  func(ctx context.Context, w io.Writer) error
	close   func(ctx context.Context) error
}

func newApp(cfg config.Config, logOut io.Writer) *app {
	handler := newLogHandler(cfg, logOut)

	a := &app{
		cfg:    cfg,
		logger: slog.New(handler),
		report: func(context.Context, io.Writer) error { return nil },
		close:  func(context.Context) error { return nil },
	}

	switch cfg.Metrics.Backend {
	case config.MetricsBackendOTel:
		providers := oteladapters.NewProviders(serviceName)
		a.metrics = providers.MetricsCollector()
		a.tracing = providers.TracingCollector()
		a.logger = oteladapters.NewSlogBridgeLoggerWithHandler(handler)
		a.report = func(ctx context.Context, w io.Writer) error {
			summaries, err := providers.Snapshot(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "metrics (otel):")
			for _, m := range summaries {
				fmt.Fprintf(w, "  %s: %d data points\n", m.Name, m.DataPoints)
			}

			return nil
		}
		a.close = providers.Shutdown

	case config.MetricsBackendPrometheus:
		collector := promadapters.NewMetricsCollector(prometheus.NewRegistry())
		a.metrics = collector
		a.report = func(_ context.Context, w io.Writer) error {
			summaries, err := collector.Snapshot()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "metrics (prometheus):")
			for _, m := range summaries {
				fmt.Fprintf(w, "  %s (%s): %d samples\n", m.Name, m.Type, m.Samples)
			}

			return nil
		}
	}

	return a
}

func newLogHandler(cfg config.Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == config.LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

// newCoordinator seeds a coordinator and wires the journal and the observability backend into it.
func (a *app) newCoordinator(seed config.Seed) (*coordinator.Coordinator, error) {
	cat, ros := seed.Build()

	options := []coordinator.Option{coordinator.WithContextualLogger(a.logger)}
	if a.metrics != nil {
		options = append(options, coordinator.WithMetrics(a.metrics))
	}
	if a.tracing != nil {
		options = append(options, coordinator.WithTracing(a.tracing))
	}

	if a.cfg.Journal.Enabled {
		storeOptions := []memengine.Option{memengine.WithContextualLogger(a.logger)}
		if a.metrics != nil {
			storeOptions = append(storeOptions, memengine.WithMetrics(a.metrics))
		}

		journal, err := memengine.NewEventStore(storeOptions...)
		if err != nil {
			return nil, fmt.Errorf("create lending journal: %w", err)
		}
		options = append(options, coordinator.WithJournal(journal))
	}

	return coordinator.New(cat, ros, options...)
}

// seed returns the configured seed file's content, or the built-in library.
func (a *app) seed() (config.Seed, error) {
	if a.cfg.Seed.File == "" {
		return config.DefaultSeed(), nil
	}

	return config.LoadSeed(a.cfg.Seed.File)
}

// finish verifies consistency, prints the metrics report and shuts the backend down.
func (a *app) finish(ctx context.Context, coord *coordinator.Coordinator, out io.Writer) error {
	consistencyErr := coord.CheckConsistency()
	if consistencyErr != nil {
		a.logger.ErrorContext(ctx, "catalog and roster disagree", shell.LogAttrError, consistencyErr.Error())
	} else {
		fmt.Fprintln(out, "consistency: ok")
	}

	return errors.Join(consistencyErr, a.report(ctx, out), a.close(ctx))
}
