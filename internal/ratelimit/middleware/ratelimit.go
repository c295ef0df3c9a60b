package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"masjid/internal/ratelimit/metrics"
	"masjid/internal/ratelimit/models"
	"masjid/pkg/platform/httputil"
	"masjid/pkg/requestcontext"
)

// BucketStore records a request against a key and reports whether it fits the budget.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	store    BucketStore
	policies map[models.EndpointClass]models.Policy
	global   *rate.Limiter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithPolicy overrides the budget for one endpoint class.
func WithPolicy(class models.EndpointClass, p models.Policy) Option {
	return func(m *Middleware) {
		m.policies[class] = p
	}
}

// WithGlobalThrottle caps the instance-wide write rate at perSecond with the given burst.
func WithGlobalThrottle(perSecond float64, burst int) Option {
	return func(m *Middleware) {
		if perSecond > 0 && burst > 0 {
			m.global = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(store BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:    store,
		policies: models.DefaultPolicies(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit budgets requests of the given class per caller. Authenticated
// callers are keyed by user id, guests by client IP. Store failures fail open.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}
			policy, ok := m.policies[class]
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			subject := callerKey(ctx)
			result, err := m.store.Allow(ctx, models.Key(class, subject), policy.Limit, policy.Window)
			if err != nil {
				m.metrics.IncrementFailures()
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.metrics.IncrementRejected(string(class))
				m.logger.InfoContext(ctx, "rate limit exceeded",
					"class", class,
					"user_id", requestcontext.UserID(ctx),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GlobalThrottle rejects requests once the instance-wide token bucket is empty.
func (m *Middleware) GlobalThrottle() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled || m.global == nil {
				next.ServeHTTP(w, r)
				return
			}
			if !m.global.Allow() {
				m.metrics.IncrementThrottled()
				writeServiceOverloaded(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ByMethod budgets safe methods as reads and everything else as writes.
// Writes also pass through the global throttle.
func (m *Middleware) ByMethod() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		read := m.RateLimit(models.ClassRead)(next)
		write := m.GlobalThrottle()(m.RateLimit(models.ClassWrite)(next))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				read.ServeHTTP(w, r)
			default:
				write.ServeHTTP(w, r)
			}
		})
	}
}

func callerKey(ctx context.Context) string {
	if p := requestcontext.Principal(ctx); p.IsAuthenticated() {
		return "user:" + p.UserID.String()
	}
	ip := requestcontext.ClientIP(ctx)
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}

func writeServiceOverloaded(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	httputil.WriteJSON(w, http.StatusServiceUnavailable, &models.ServiceOverloadedResponse{
		Error:      "service_unavailable",
		Message:    "Service is temporarily overloaded. Please try again later.",
		RetryAfter: 1,
	})
}
