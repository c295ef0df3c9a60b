//go:build integration

package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"masjid/internal/mosque/cache"
	"masjid/internal/mosque/models"
	"masjid/internal/mosque/store"
	"masjid/internal/platform/database"
	"masjid/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	ctx     context.Context
	pg      *containers.PostgresContainer
	redis   *containers.RedisContainer
	store   *store.PostgresStore
	service *Service
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewPostgres(s.pg.DB)
	s.service = New(s.store, database.NewTxRunner(s.pg.DB, 0),
		WithCache(cache.NewRedis(s.redis.Client, time.Minute, logger)),
		WithLogger(logger),
	)
}

func (s *RedisCacheSuite) seedApproved(name string) *models.Mosque {
	m := &models.Mosque{
		Details:  models.Canonical(models.Details{ArabicName: name, Governorate: "Cairo", Latitude: ptr(30.0), Longitude: ptr(31.2)}),
		Approved: true,
	}
	s.Require().NoError(s.store.Create(s.ctx, m))
	return m
}

func (s *RedisCacheSuite) TestGetPopulatesSharedCache() {
	m := s.seedApproved("Al Azhar")

	got, err := s.service.Get(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal("Al Azhar", got.ArabicName)

	n, err := s.redis.Client.Exists(s.ctx, "masjid:mosque:"+m.ID.String()).Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	ttl, err := s.redis.Client.TTL(s.ctx, "masjid:mosque:"+m.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisCacheSuite) TestSecondInstanceReadsCachedRecord() {
	m := s.seedApproved("Ibn Tulun")
	_, err := s.service.Get(s.ctx, m.ID)
	s.Require().NoError(err)

	other := cache.NewRedis(s.redis.Client, time.Minute, nil)
	cached, ok := other.Get(s.ctx, m.ID)
	s.Require().True(ok)
	s.Equal(m.ID, cached.ID)
	s.Equal("Ibn Tulun", cached.ArabicName)
}

func (s *RedisCacheSuite) TestInvalidateDropsEntry() {
	m := s.seedApproved("Al Hussein")
	_, err := s.service.Get(s.ctx, m.ID)
	s.Require().NoError(err)

	s.service.Invalidate(s.ctx, m.ID)

	n, err := s.redis.Client.Exists(s.ctx, "masjid:mosque:"+m.ID.String()).Result()
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RedisCacheSuite) TestPing() {
	s.NoError(cache.NewRedis(s.redis.Client, time.Minute, nil).Ping(s.ctx))
}
