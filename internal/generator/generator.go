// Package generator synthesizes API response logs from a single seeded source.
//
// Every random draw (timestamps, categories, statuses and response times)
// goes through one gofakeit.Faker constructed from the configured seed, so a
// run is fully determined by its seed and window end.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/dataset"
	"github.com/telhawk-systems/apilog-generator/internal/logging"
	"github.com/telhawk-systems/apilog-generator/internal/metrics"
)

// Generator produces datasets for one configuration.
type Generator struct {
	cfg    config.DatasetConfig
	now    func() time.Time
	logger *logging.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock overrides the clock used to anchor the window end.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *logging.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// New validates cfg and returns a Generator for it.
func New(cfg config.DatasetConfig, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:    cfg,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate draws a fresh dataset sorted ascending by date.
//
// Each call reseeds, so repeated calls with the same clock return identical
// records.
func (g *Generator) Generate(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	generatedAt := g.now()
	end := generatedAt.UTC().Truncate(time.Second)
	start := end.Add(-g.cfg.Window)
	n := g.cfg.Count

	ctx = logging.ContextWithRunID(ctx, runID.String())
	g.logger.DebugContext(ctx, "Generating dataset",
		logging.Records(n),
		logging.Seed(g.cfg.Seed),
		"window_start", start,
		"window_end", end,
	)

	f := gofakeit.New(g.cfg.Seed)

	// Draw order is fixed: all timestamps, then categories, then statuses,
	// then response times.
	dates := drawTimestamps(f, start, g.cfg.WindowDays(), n)

	categories, err := drawLabels(f, g.cfg.Categories, n)
	if err != nil {
		return nil, fmt.Errorf("draw categories: %w", err)
	}

	statuses, err := drawLabels(f, g.cfg.Statuses, n)
	if err != nil {
		return nil, fmt.Errorf("draw statuses: %w", err)
	}

	records := make([]dataset.Record, n)
	for i := range records {
		dist, ok := g.cfg.Distribution(statuses[i])
		if !ok {
			return nil, fmt.Errorf("no response time distribution for status %q", statuses[i])
		}
		records[i] = dataset.Record{
			Date:         dates[i],
			Category:     categories[i],
			Status:       statuses[i],
			ResponseTime: drawResponseTime(f, dist),
		}
		metrics.ObserveRecord(records[i].Category, records[i].Status, records[i].ResponseTime)
	}

	dataset.SortByDate(records)

	elapsed := time.Since(started)
	metrics.GenerationDuration.Observe(elapsed.Seconds())
	g.logger.InfoContext(ctx, "Generated dataset", logging.Records(n), logging.Duration(elapsed))

	return &dataset.Dataset{
		RunID:       runID.String(),
		Seed:        g.cfg.Seed,
		WindowStart: start,
		WindowEnd:   end,
		GeneratedAt: generatedAt,
		Records:     records,
	}, nil
}
