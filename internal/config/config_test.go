package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 500, cfg.Dataset.Count)
	assert.Equal(t, int64(42), cfg.Dataset.Seed)
	assert.Equal(t, 30*24*time.Hour, cfg.Dataset.Window)
	assert.Equal(t, 30, cfg.Dataset.WindowDays())
	assert.Equal(t, []WeightedValue{
		{Name: "Claims", Weight: 0.5},
		{Name: "Payments", Weight: 0.3},
		{Name: "Eligibility", Weight: 0.2},
	}, cfg.Dataset.Categories)
	assert.Equal(t, []WeightedValue{
		{Name: "success", Weight: 0.85},
		{Name: "failed", Weight: 0.15},
	}, cfg.Dataset.Statuses)

	success, ok := cfg.Dataset.Distribution("success")
	require.True(t, ok)
	assert.Equal(t, Distribution{Mean: 200, StdDev: 50}, success)
	failed, ok := cfg.Dataset.Distribution("failed")
	require.True(t, ok)
	assert.Equal(t, Distribution{Mean: 500, StdDev: 150}, failed)

	assert.Equal(t, "api_responses.xlsx", cfg.Output.Path)
	assert.Equal(t, "Sheet1", cfg.Output.Sheet)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":5001", cfg.Server.Address)
	assert.Empty(t, cfg.Sinks.EnabledSinks())

	require.NoError(t, cfg.Validate())
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_WithConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	content := `dataset:
  count: 50
  seed: 7
  window: 168h
  categories:
    - name: Claims
      weight: 1
  response_times:
    success:
      mean: 100
      stddev: 10
output:
  path: out.xlsx
sinks:
  redis:
    enabled: true
    stream: test:stream
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Dataset.Count)
	assert.Equal(t, int64(7), cfg.Dataset.Seed)
	assert.Equal(t, 7*24*time.Hour, cfg.Dataset.Window)
	assert.Equal(t, []WeightedValue{{Name: "Claims", Weight: 1}}, cfg.Dataset.Categories)
	assert.Len(t, cfg.Dataset.Statuses, 2, "statuses fall back to defaults")

	success, _ := cfg.Dataset.Distribution("success")
	assert.Equal(t, Distribution{Mean: 100, StdDev: 10}, success)
	failed, ok := cfg.Dataset.Distribution("failed")
	require.True(t, ok, "unset distributions keep their defaults")
	assert.Equal(t, Distribution{Mean: 500, StdDev: 150}, failed)

	assert.Equal(t, "out.xlsx", cfg.Output.Path)
	assert.Equal(t, "Sheet1", cfg.Output.Sheet)
	assert.True(t, cfg.Sinks.Redis.Enabled)
	assert.Equal(t, "test:stream", cfg.Sinks.Redis.Stream)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Sinks.Redis.URL)
	assert.Equal(t, []string{"redis"}, cfg.Sinks.EnabledSinks())

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APIGEN_DATASET_COUNT", "25")
	t.Setenv("APIGEN_OUTPUT_PATH", "env.xlsx")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Dataset.Count)
	assert.Equal(t, "env.xlsx", cfg.Output.Path)
}

func TestLoad_MalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("dataset: [unterminated"), 0600))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero count",
			mutate:  func(c *Config) { c.Dataset.Count = 0 },
			wantErr: "dataset.count",
		},
		{
			name:    "zero seed",
			mutate:  func(c *Config) { c.Dataset.Seed = 0 },
			wantErr: "dataset.seed",
		},
		{
			name:    "window shorter than a day",
			mutate:  func(c *Config) { c.Dataset.Window = time.Hour },
			wantErr: "dataset.window",
		},
		{
			name:    "window not whole days",
			mutate:  func(c *Config) { c.Dataset.Window = 36 * time.Hour },
			wantErr: "whole number of days",
		},
		{
			name: "category weights do not sum to one",
			mutate: func(c *Config) {
				c.Dataset.Categories = []WeightedValue{{Name: "Claims", Weight: 0.5}, {Name: "Payments", Weight: 0.2}}
			},
			wantErr: "sum to 0.7000",
		},
		{
			name: "negative weight",
			mutate: func(c *Config) {
				c.Dataset.Statuses = []WeightedValue{{Name: "success", Weight: 1.15}, {Name: "failed", Weight: -0.15}}
			},
			wantErr: "must be positive",
		},
		{
			name: "duplicate label",
			mutate: func(c *Config) {
				c.Dataset.Categories = []WeightedValue{{Name: "Claims", Weight: 0.5}, {Name: "Claims", Weight: 0.5}}
			},
			wantErr: "twice",
		},
		{
			name:    "empty statuses",
			mutate:  func(c *Config) { c.Dataset.Statuses = nil },
			wantErr: "at least one value",
		},
		{
			name:    "status without distribution",
			mutate:  func(c *Config) { delete(c.Dataset.ResponseTimes, "failed") },
			wantErr: `status "failed"`,
		},
		{
			name:    "negative stddev",
			mutate:  func(c *Config) { c.Dataset.ResponseTimes["success"] = Distribution{Mean: 200, StdDev: -1} },
			wantErr: "non-negative",
		},
		{
			name:    "empty output path",
			mutate:  func(c *Config) { c.Output.Path = "" },
			wantErr: "output.path",
		},
		{
			name:    "postgres enabled without dsn",
			mutate:  func(c *Config) { c.Sinks.Postgres.Enabled = true },
			wantErr: "sinks.postgres.dsn",
		},
		{
			name: "opensearch enabled without url",
			mutate: func(c *Config) {
				c.Sinks.OpenSearch.Enabled = true
				c.Sinks.OpenSearch.URL = ""
			},
			wantErr: "sinks.opensearch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnabledSinks_Order(t *testing.T) {
	cfg := Default()
	cfg.Sinks.OpenSearch.Enabled = true
	cfg.Sinks.Postgres.Enabled = true
	cfg.Sinks.NATS.Enabled = true

	assert.Equal(t, []string{"postgres", "nats", "opensearch"}, cfg.Sinks.EnabledSinks())
}
