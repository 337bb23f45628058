package export

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/dataset"
)

// RedisSink appends one stream entry per record.
type RedisSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisSink connects to cfg.URL and verifies the connection.
func NewRedisSink(ctx context.Context, cfg config.RedisConfig) (*RedisSink, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisSinkFromClient(client, cfg.Stream, cfg.MaxLen), nil
}

// NewRedisSinkFromClient wraps an existing client. maxLen <= 0 disables trimming.
func NewRedisSinkFromClient(client *redis.Client, stream string, maxLen int64) *RedisSink {
	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisSink) Name() string { return "redis" }

// Export writes all entries in a single pipeline.
func (s *RedisSink) Export(ctx context.Context, ds *dataset.Dataset) error {
	if len(ds.Records) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, r := range ds.Records {
		args := &redis.XAddArgs{
			Stream: s.stream,
			Values: map[string]any{
				"run_id":                   ds.RunID,
				dataset.ColumnDate:         r.Date.UTC().Format(time.RFC3339),
				dataset.ColumnCategory:     r.Category,
				dataset.ColumnStatus:       r.Status,
				dataset.ColumnResponseTime: strconv.FormatFloat(r.ResponseTime, 'f', 2, 64),
			},
		}
		if s.maxLen > 0 {
			args.MaxLen = s.maxLen
			args.Approx = true
		}
		pipe.XAdd(ctx, args)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", s.stream, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
