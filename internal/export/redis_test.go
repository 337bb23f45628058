package export

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/apilog-generator/internal/config"
)

func TestRedisSink_Export(t *testing.T) {
	mr := miniredis.RunT(t)

	sink, err := NewRedisSink(context.Background(), config.RedisConfig{
		URL:    "redis://" + mr.Addr(),
		Stream: "apigen:api_responses",
	})
	require.NoError(t, err)
	defer sink.Close()

	ds := testDataset()
	require.NoError(t, sink.Export(context.Background(), ds))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	entries, err := client.XRange(context.Background(), "apigen:api_responses", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0].Values
	assert.Equal(t, ds.RunID, first["run_id"])
	assert.Equal(t, "Claims", first["category"])
	assert.Equal(t, "success", first["status"])
	assert.Equal(t, "187.21", first["responseTime"])
	assert.Equal(t, "2026-10-17T12:00:00Z", first["date"])
}

func TestRedisSink_MaxLen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sink := NewRedisSinkFromClient(client, "capped", 2)
	defer sink.Close()

	require.NoError(t, sink.Export(context.Background(), testDataset()))

	n, err := client.XLen(context.Background(), "capped").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, n, int64(3))
	assert.GreaterOrEqual(t, n, int64(2))
}

func TestRedisSink_EmptyDataset(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sink := NewRedisSinkFromClient(client, "empty", 0)
	defer sink.Close()

	ds := testDataset()
	ds.Records = nil
	require.NoError(t, sink.Export(context.Background(), ds))
	assert.False(t, mr.Exists("empty"))
}

func TestNewRedisSink_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisSink(context.Background(), config.RedisConfig{URL: "redis://" + addr, Stream: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestNewRedisSink_BadURL(t *testing.T) {
	_, err := NewRedisSink(context.Background(), config.RedisConfig{URL: "http://nope", Stream: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse redis URL")
}
