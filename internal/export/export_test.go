package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/dataset"
	"github.com/telhawk-systems/apilog-generator/internal/metrics"
)

type fakeSink struct {
	name      string
	exportErr error
	closeErr  error
	exported  []string
	closed    bool
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Export(_ context.Context, ds *dataset.Dataset) error {
	if s.exportErr != nil {
		return s.exportErr
	}
	s.exported = append(s.exported, ds.RunID)
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return s.closeErr
}

func testDataset() *dataset.Dataset {
	end := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	return &dataset.Dataset{
		RunID:       "0192a4f1-7c3e-7b6a-9d1e-2f4c5b6a7d8e",
		Seed:        42,
		WindowStart: end.Add(-30 * 24 * time.Hour),
		WindowEnd:   end,
		GeneratedAt: end,
		Records: []dataset.Record{
			{Date: end.Add(-48 * time.Hour), Category: "Claims", Status: "success", ResponseTime: 187.21},
			{Date: end.Add(-24 * time.Hour), Category: "Payments", Status: "failed", ResponseTime: 612.5},
			{Date: end.Add(-time.Hour), Category: "Eligibility", Status: "success", ResponseTime: 203.04},
		},
	}
}

func TestFanout_ExportsInOrder(t *testing.T) {
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b"}
	f := NewFanout(nil, a, b)

	require.NoError(t, f.Export(context.Background(), testDataset()))

	assert.Equal(t, []string{"a", "b"}, f.Names())
	assert.Equal(t, 2, f.Len())
	assert.Len(t, a.exported, 1)
	assert.Len(t, b.exported, 1)
}

func TestFanout_StopsOnFirstError(t *testing.T) {
	boom := errors.New("connection refused")
	broken := &fakeSink{name: "fanout-broken", exportErr: boom}
	after := &fakeSink{name: "after"}
	f := NewFanout(nil, broken, after)

	before := testutil.ToFloat64(metrics.ExportErrors.WithLabelValues("fanout-broken"))

	err := f.Export(context.Background(), testDataset())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fanout-broken sink")
	assert.Empty(t, after.exported)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ExportErrors.WithLabelValues("fanout-broken")))
}

func TestFanout_CanceledContext(t *testing.T) {
	s := &fakeSink{name: "a"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFanout(nil, s).Export(ctx, testDataset())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.exported)
}

func TestFanout_CloseJoinsErrors(t *testing.T) {
	a := &fakeSink{name: "a", closeErr: errors.New("a failed")}
	b := &fakeSink{name: "b"}
	c := &fakeSink{name: "c", closeErr: errors.New("c failed")}

	err := NewFanout(nil, a, b, c).Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close a sink: a failed")
	assert.Contains(t, err.Error(), "close c sink: c failed")
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.True(t, c.closed)
}

func TestOpen_NoSinksEnabled(t *testing.T) {
	f, err := Open(context.Background(), config.Default().Sinks, nil)
	require.NoError(t, err)
	assert.Zero(t, f.Len())
	assert.NoError(t, f.Export(context.Background(), testDataset()))
}

func TestNew_NotConfigured(t *testing.T) {
	cfg := config.Default().Sinks

	for _, name := range []string{"postgres", "redis", "nats", "opensearch", "kafka"} {
		_, err := New(context.Background(), name, cfg)
		assert.ErrorIs(t, err, ErrSinkNotConfigured, name)
	}
}
