package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masjid/internal/ratelimit/metrics"
	"masjid/internal/ratelimit/models"
	"masjid/internal/ratelimit/store/bucket"
	"masjid/pkg/domain"
	"masjid/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("store down")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler, p domain.Principal, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/suggestions/mosques", nil)
	ctx := requestcontext.WithPrincipal(req.Context(), p)
	ctx = requestcontext.WithClientMetadata(ctx, ip, "test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func TestRateLimit_PerUserBudget(t *testing.T) {
	mt := metrics.New(prometheus.NewRegistry())
	m := New(bucket.NewInMemoryBucketStore(), discardLogger(),
		WithPolicy(models.ClassWrite, models.Policy{Limit: 2, Window: time.Minute}),
		WithMetrics(mt),
	)
	h := m.RateLimit(models.ClassWrite)(okHandler())
	alice := domain.Principal{UserID: 1, Role: domain.RoleAuthenticated}
	bob := domain.Principal{UserID: 2, Role: domain.RoleAuthenticated}

	assert.Equal(t, http.StatusNoContent, serve(h, alice, "10.0.0.1").Code)
	rec := serve(h, alice, "10.0.0.1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(h, alice, "10.0.0.2")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	assert.Equal(t, http.StatusNoContent, serve(h, bob, "10.0.0.1").Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Rejected.WithLabelValues("write")))
}

func TestRateLimit_GuestsKeyedByIP(t *testing.T) {
	m := New(bucket.NewInMemoryBucketStore(), discardLogger(),
		WithPolicy(models.ClassWrite, models.Policy{Limit: 1, Window: time.Minute}),
	)
	h := m.RateLimit(models.ClassWrite)(okHandler())

	assert.Equal(t, http.StatusNoContent, serve(h, domain.Guest, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, domain.Guest, "10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, serve(h, domain.Guest, "10.0.0.9").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mt := metrics.New(prometheus.NewRegistry())
	m := New(failingStore{}, discardLogger(), WithMetrics(mt))
	h := m.RateLimit(models.ClassWrite)(okHandler())

	assert.Equal(t, http.StatusNoContent, serve(h, domain.Guest, "10.0.0.1").Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Failures))
}

func TestRateLimit_Disabled(t *testing.T) {
	m := New(failingStore{}, discardLogger(), WithDisabled(true),
		WithPolicy(models.ClassWrite, models.Policy{Limit: 0, Window: time.Minute}),
	)
	h := m.RateLimit(models.ClassWrite)(okHandler())
	for range 3 {
		require.Equal(t, http.StatusNoContent, serve(h, domain.Guest, "10.0.0.1").Code)
	}
}

func TestGlobalThrottle(t *testing.T) {
	mt := metrics.New(prometheus.NewRegistry())
	m := New(bucket.NewInMemoryBucketStore(), discardLogger(), WithGlobalThrottle(0.001, 2), WithMetrics(mt))
	h := m.GlobalThrottle()(okHandler())

	assert.Equal(t, http.StatusNoContent, serve(h, domain.Guest, "a").Code)
	assert.Equal(t, http.StatusNoContent, serve(h, domain.Guest, "b").Code)
	rec := serve(h, domain.Guest, "c")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Throttled))
}

func TestGlobalThrottle_NotConfigured(t *testing.T) {
	m := New(bucket.NewInMemoryBucketStore(), discardLogger())
	h := m.GlobalThrottle()(okHandler())
	for range 5 {
		require.Equal(t, http.StatusNoContent, serve(h, domain.Guest, "a").Code)
	}
}

func TestByMethod(t *testing.T) {
	m := New(bucket.NewInMemoryBucketStore(), discardLogger(),
		WithPolicy(models.ClassWrite, models.Policy{Limit: 1, Window: time.Minute}),
		WithPolicy(models.ClassRead, models.Policy{Limit: 5, Window: time.Minute}),
	)
	h := m.ByMethod()(okHandler())

	assert.Equal(t, http.StatusNoContent, serve(h, domain.Guest, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, domain.Guest, "10.0.0.1").Code)

	req := httptest.NewRequest(http.MethodGet, "/mosques", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "10.0.0.1", "test"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
}
