package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masjid/internal/platform/config"
)

func TestNewWithoutURLDisablesRedis(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "http://not-redis"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestClientOptions(t *testing.T) {
	t.Run("config overrides pool settings", func(t *testing.T) {
		opts, err := clientOptions(config.RedisConfig{
			URL:          "redis://cache.internal:6380/2",
			PoolSize:     25,
			MinIdleConns: 4,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: 1500 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 25, opts.PoolSize)
		assert.Equal(t, 4, opts.MinIdleConns)
		assert.Equal(t, 2*time.Second, opts.DialTimeout)
		assert.Equal(t, time.Second, opts.ReadTimeout)
		assert.Equal(t, 1500*time.Millisecond, opts.WriteTimeout)
	})

	t.Run("zero values keep url settings", func(t *testing.T) {
		opts, err := clientOptions(config.RedisConfig{URL: "redis://localhost:6379/0?pool_size=7&dial_timeout=3s"})
		require.NoError(t, err)
		assert.Equal(t, 7, opts.PoolSize)
		assert.Equal(t, 3*time.Second, opts.DialTimeout)
		assert.Equal(t, 0, opts.MinIdleConns)
	})
}
