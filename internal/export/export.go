// Package export publishes a generated dataset to optional downstream sinks.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/dataset"
	"github.com/telhawk-systems/apilog-generator/internal/logging"
	"github.com/telhawk-systems/apilog-generator/internal/metrics"
)

// ErrSinkNotConfigured is returned when a sink is requested by name but is
// unknown or disabled.
var ErrSinkNotConfigured = errors.New("sink not configured")

// Sink is a destination for a generated run.
type Sink interface {
	Name() string
	Export(ctx context.Context, ds *dataset.Dataset) error
	Close() error
}

// Fanout exports a dataset to each sink in order.
type Fanout struct {
	sinks  []Sink
	logger *logging.Logger
}

// NewFanout wraps sinks. A nil logger discards output.
func NewFanout(logger *logging.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Fanout{sinks: sinks, logger: logger}
}

// Open connects every enabled sink in cfg. Sinks opened before a failure are
// closed again.
func Open(ctx context.Context, cfg config.SinksConfig, logger *logging.Logger) (*Fanout, error) {
	f := NewFanout(logger)
	for _, name := range cfg.EnabledSinks() {
		sink, err := New(ctx, name, cfg)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open %s sink: %w", name, err)
		}
		f.sinks = append(f.sinks, sink)
	}
	return f, nil
}

// New constructs a single enabled sink by name.
func New(ctx context.Context, name string, cfg config.SinksConfig) (Sink, error) {
	switch name {
	case "postgres":
		if cfg.Postgres.Enabled {
			return NewPostgresSink(ctx, cfg.Postgres)
		}
	case "redis":
		if cfg.Redis.Enabled {
			return NewRedisSink(ctx, cfg.Redis)
		}
	case "nats":
		if cfg.NATS.Enabled {
			return NewNATSSink(cfg.NATS)
		}
	case "opensearch":
		if cfg.OpenSearch.Enabled {
			return NewOpenSearchSink(cfg.OpenSearch)
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrSinkNotConfigured)
}

// Names lists the wrapped sinks in export order.
func (f *Fanout) Names() []string {
	names := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Len returns the number of wrapped sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

// Export runs each sink sequentially and stops at the first failure.
func (f *Fanout) Export(ctx context.Context, ds *dataset.Dataset) error {
	ctx = logging.ContextWithRunID(ctx, ds.RunID)
	for _, s := range f.sinks {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		err := s.Export(ctx, ds)
		elapsed := time.Since(start)
		metrics.ObserveExport(s.Name(), elapsed, err)

		if err != nil {
			f.logger.ErrorContext(ctx, "export failed", logging.Sink(s.Name()), logging.Error(err))
			return fmt.Errorf("%s sink: %w", s.Name(), err)
		}
		f.logger.InfoContext(ctx, "export complete",
			logging.Sink(s.Name()),
			logging.Records(ds.Len()),
			logging.Duration(elapsed),
		)
	}
	return nil
}

// Close closes every sink and joins their errors.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s sink: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
