// Package cache keeps recently read public mosque records close to the
// handlers. Redis is used when configured; otherwise an in-process cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"masjid/internal/mosque/models"
	"masjid/pkg/domain"
)

const keyPrefix = "masjid:mosque:"

// Cache stores approved mosques by id.
type Cache interface {
	Get(ctx context.Context, id domain.MosqueID) (*models.Mosque, bool)
	Set(ctx context.Context, m models.Mosque)
	Invalidate(ctx context.Context, id domain.MosqueID)
}

func key(id domain.MosqueID) string {
	return keyPrefix + id.String()
}

// Local is an in-process cache.
type Local struct {
	c *gocache.Cache
}

func NewLocal(ttl time.Duration) *Local {
	return &Local{c: gocache.New(ttl, 2*ttl)}
}

func (l *Local) Get(_ context.Context, id domain.MosqueID) (*models.Mosque, bool) {
	v, ok := l.c.Get(key(id))
	if !ok {
		return nil, false
	}
	m := v.(models.Mosque).Clone()
	return &m, true
}

func (l *Local) Set(_ context.Context, m models.Mosque) {
	l.c.SetDefault(key(m.ID), m.Clone())
}

func (l *Local) Invalidate(_ context.Context, id domain.MosqueID) {
	l.c.Delete(key(id))
}

// Redis shares cached records between instances. Errors degrade to a miss.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedis(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Get(ctx context.Context, id domain.MosqueID) (*models.Mosque, bool) {
	raw, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WarnContext(ctx, "mosque cache read failed", "mosque_id", id, "error", err)
		}
		return nil, false
	}
	var m models.Mosque
	if err := json.Unmarshal(raw, &m); err != nil {
		r.logger.WarnContext(ctx, "mosque cache entry corrupt", "mosque_id", id, "error", err)
		return nil, false
	}
	return &m, true
}

func (r *Redis) Set(ctx context.Context, m models.Mosque) {
	raw, err := json.Marshal(m)
	if err != nil {
		r.logger.WarnContext(ctx, "mosque cache encode failed", "mosque_id", m.ID, "error", err)
		return
	}
	if err := r.client.Set(ctx, key(m.ID), raw, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "mosque cache write failed", "mosque_id", m.ID, "error", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, id domain.MosqueID) {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		r.logger.WarnContext(ctx, "mosque cache invalidate failed", "mosque_id", id, "error", err)
	}
}

// Ping verifies the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
