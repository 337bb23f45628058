package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete apigen configuration
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Sinks   SinksConfig   `mapstructure:"sinks" yaml:"sinks"`
}

// DatasetConfig holds every generation parameter.
type DatasetConfig struct {
	Count         int                     `mapstructure:"count" yaml:"count"`
	Seed          int64                   `mapstructure:"seed" yaml:"seed"`
	Window        time.Duration           `mapstructure:"window" yaml:"window"`
	Categories    []WeightedValue         `mapstructure:"categories" yaml:"categories"`
	Statuses      []WeightedValue         `mapstructure:"statuses" yaml:"statuses"`
	ResponseTimes map[string]Distribution `mapstructure:"response_times" yaml:"response_times"`
}

// WeightedValue is one label of a weighted categorical draw.
type WeightedValue struct {
	Name   string  `mapstructure:"name" yaml:"name"`
	Weight float64 `mapstructure:"weight" yaml:"weight"`
}

// Distribution parameterizes a normal distribution in milliseconds.
type Distribution struct {
	Mean   float64 `mapstructure:"mean" yaml:"mean"`
	StdDev float64 `mapstructure:"stddev" yaml:"stddev"`
}

// OutputConfig controls where the workbook is written.
type OutputConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Sheet string `mapstructure:"sheet" yaml:"sheet"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig controls the serve command's HTTP listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// SinksConfig groups the optional export destinations.
type SinksConfig struct {
	Postgres   PostgresConfig   `mapstructure:"postgres" yaml:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis" yaml:"redis"`
	NATS       NATSConfig       `mapstructure:"nats" yaml:"nats"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch" yaml:"opensearch"`
}

type PostgresConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
	Migrate bool   `mapstructure:"migrate" yaml:"migrate"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"url"`
	Stream  string `mapstructure:"stream" yaml:"stream"`
	MaxLen  int64  `mapstructure:"max_len" yaml:"max_len"`
}

type NATSConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	URL           string `mapstructure:"url" yaml:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix" yaml:"subject_prefix"`
}

type OpenSearchConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	URL           string `mapstructure:"url" yaml:"url"`
	Username      string `mapstructure:"username" yaml:"username"`
	Password      string `mapstructure:"password" yaml:"password"`
	IndexPrefix   string `mapstructure:"index_prefix" yaml:"index_prefix"`
	TLSSkipVerify bool   `mapstructure:"tls_skip_verify" yaml:"tls_skip_verify"`
}

// Load loads configuration with cascade: explicit file > ./apigen.yaml > ~/.apigen/apigen.yaml > APIGEN_* env > defaults.
// Flags are applied by the caller on top of the returned value.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("apigen")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APIGEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".apigen"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("default config does not decode: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.count", 500)
	v.SetDefault("dataset.seed", 42)
	v.SetDefault("dataset.window", 30*24*time.Hour)
	v.SetDefault("dataset.categories", []map[string]any{
		{"name": "Claims", "weight": 0.5},
		{"name": "Payments", "weight": 0.3},
		{"name": "Eligibility", "weight": 0.2},
	})
	v.SetDefault("dataset.statuses", []map[string]any{
		{"name": "success", "weight": 0.85},
		{"name": "failed", "weight": 0.15},
	})
	v.SetDefault("dataset.response_times", map[string]any{
		"success": map[string]any{"mean": 200.0, "stddev": 50.0},
		"failed":  map[string]any{"mean": 500.0, "stddev": 150.0},
	})

	v.SetDefault("output.path", "api_responses.xlsx")
	v.SetDefault("output.sheet", "Sheet1")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("server.address", ":5001")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("sinks.postgres.enabled", false)
	v.SetDefault("sinks.postgres.dsn", "")
	v.SetDefault("sinks.postgres.migrate", true)

	v.SetDefault("sinks.redis.enabled", false)
	v.SetDefault("sinks.redis.url", "redis://localhost:6379/0")
	v.SetDefault("sinks.redis.stream", "apigen:api_responses")
	v.SetDefault("sinks.redis.max_len", 0)

	v.SetDefault("sinks.nats.enabled", false)
	v.SetDefault("sinks.nats.url", "nats://localhost:4222")
	v.SetDefault("sinks.nats.subject_prefix", "apigen.api_responses")

	v.SetDefault("sinks.opensearch.enabled", false)
	v.SetDefault("sinks.opensearch.url", "https://localhost:9200")
	v.SetDefault("sinks.opensearch.username", "admin")
	v.SetDefault("sinks.opensearch.password", "admin")
	v.SetDefault("sinks.opensearch.index_prefix", "apigen-api-responses")
	v.SetDefault("sinks.opensearch.tls_skip_verify", true)
}

const weightTolerance = 1e-6

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Dataset.Validate(); err != nil {
		return err
	}
	if c.Output.Path == "" {
		return fmt.Errorf("%w: output.path is required", ErrInvalidConfig)
	}
	if c.Output.Sheet == "" {
		return fmt.Errorf("%w: output.sheet is required", ErrInvalidConfig)
	}
	return c.Sinks.Validate()
}

// Validate checks the generation parameters.
func (d *DatasetConfig) Validate() error {
	if d.Count <= 0 {
		return fmt.Errorf("%w: dataset.count must be positive, got %d", ErrInvalidConfig, d.Count)
	}
	// gofakeit reseeds from crypto/rand on 0, which would break reproducibility
	if d.Seed == 0 {
		return fmt.Errorf("%w: dataset.seed must be non-zero", ErrInvalidConfig)
	}
	if d.Window < 24*time.Hour {
		return fmt.Errorf("%w: dataset.window must be at least 24h, got %v", ErrInvalidConfig, d.Window)
	}
	if d.Window%(24*time.Hour) != 0 {
		return fmt.Errorf("%w: dataset.window must be a whole number of days, got %v", ErrInvalidConfig, d.Window)
	}
	if err := validateWeights("dataset.categories", d.Categories); err != nil {
		return err
	}
	if err := validateWeights("dataset.statuses", d.Statuses); err != nil {
		return err
	}
	for _, status := range d.Statuses {
		dist, ok := d.ResponseTimes[strings.ToLower(status.Name)]
		if !ok {
			return fmt.Errorf("%w: no response time distribution for status %q", ErrInvalidConfig, status.Name)
		}
		if dist.Mean < 0 || dist.StdDev < 0 {
			return fmt.Errorf("%w: response time distribution for %q must be non-negative", ErrInvalidConfig, status.Name)
		}
	}
	return nil
}

// WindowDays returns the window length in whole days.
func (d *DatasetConfig) WindowDays() int {
	return int(d.Window / (24 * time.Hour))
}

// Distribution returns the response time distribution for status.
func (d *DatasetConfig) Distribution(status string) (Distribution, bool) {
	dist, ok := d.ResponseTimes[strings.ToLower(status)]
	return dist, ok
}

func validateWeights(key string, values []WeightedValue) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: %s must list at least one value", ErrInvalidConfig, key)
	}
	seen := make(map[string]bool, len(values))
	sum := 0.0
	for _, v := range values {
		if v.Name == "" {
			return fmt.Errorf("%w: %s has an entry without a name", ErrInvalidConfig, key)
		}
		if seen[v.Name] {
			return fmt.Errorf("%w: %s lists %q twice", ErrInvalidConfig, key, v.Name)
		}
		seen[v.Name] = true
		if v.Weight <= 0 {
			return fmt.Errorf("%w: %s weight for %q must be positive", ErrInvalidConfig, key, v.Name)
		}
		sum += v.Weight
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: %s weights sum to %.4f, want 1", ErrInvalidConfig, key, sum)
	}
	return nil
}

// Validate checks that every enabled sink has somewhere to go.
func (s *SinksConfig) Validate() error {
	if s.Postgres.Enabled && s.Postgres.DSN == "" {
		return fmt.Errorf("%w: sinks.postgres.dsn is required when enabled", ErrInvalidConfig)
	}
	if s.Redis.Enabled && (s.Redis.URL == "" || s.Redis.Stream == "") {
		return fmt.Errorf("%w: sinks.redis.url and sinks.redis.stream are required when enabled", ErrInvalidConfig)
	}
	if s.NATS.Enabled && (s.NATS.URL == "" || s.NATS.SubjectPrefix == "") {
		return fmt.Errorf("%w: sinks.nats.url and sinks.nats.subject_prefix are required when enabled", ErrInvalidConfig)
	}
	if s.OpenSearch.Enabled && (s.OpenSearch.URL == "" || s.OpenSearch.IndexPrefix == "") {
		return fmt.Errorf("%w: sinks.opensearch.url and sinks.opensearch.index_prefix are required when enabled", ErrInvalidConfig)
	}
	return nil
}

// EnabledSinks returns the names of enabled sinks in export order.
func (s *SinksConfig) EnabledSinks() []string {
	var names []string
	if s.Postgres.Enabled {
		names = append(names, "postgres")
	}
	if s.Redis.Enabled {
		names = append(names, "redis")
	}
	if s.NATS.Enabled {
		names = append(names, "nats")
	}
	if s.OpenSearch.Enabled {
		names = append(names, "opensearch")
	}
	return names
}
