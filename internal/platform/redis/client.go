package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"masjid/internal/platform/config"
)

// Client is the shared connection pool behind the read cache and the
// rate limit buckets.
type Client struct {
	*redis.Client
	logger *slog.Logger
}

// New dials Redis and verifies the connection. It returns a nil client and
// no error when no URL is configured, which keeps the service on its
// in-process cache and buckets.
func New(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	logger.InfoContext(ctx, "redis connected",
		"addr", opts.Addr,
		"db", opts.DB,
		"pool_size", opts.PoolSize,
		"min_idle_conns", opts.MinIdleConns,
	)
	return &Client{Client: client, logger: logger}, nil
}

// clientOptions layers the configured pool settings over whatever the URL
// carries. Zero values keep the URL's (or go-redis's) defaults, except
// MinIdleConns which is always taken from config.
func clientOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Health pings Redis. A failed ping carries the pool counters so a
// saturated pool can be told apart from an unreachable server.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		st := c.PoolStats()
		return fmt.Errorf("redis ping (conns=%d idle=%d timeouts=%d): %w", st.TotalConns, st.IdleConns, st.Timeouts, err)
	}
	return nil
}

// Close logs the pool counters accumulated over the process lifetime and
// releases the connections.
func (c *Client) Close() error {
	st := c.PoolStats()
	c.logger.Info("redis closing",
		"hits", st.Hits,
		"misses", st.Misses,
		"timeouts", st.Timeouts,
		"stale_conns", st.StaleConns,
	)
	return c.Client.Close()
}
