package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	platformmetrics "masjid/internal/platform/metrics"
	ratelimit "masjid/internal/ratelimit/middleware"
	"masjid/pkg/domain"
	"masjid/pkg/platform/httputil"
	auth "masjid/pkg/platform/middleware/auth"
	metadata "masjid/pkg/platform/middleware/metadata"
	request "masjid/pkg/platform/middleware/request"
	"masjid/pkg/platform/middleware/requesttime"
)

// Routes is implemented by module handlers that expose public routes.
type Routes interface {
	Register(r chi.Router)
}

// ModerationRoutes is implemented by module handlers with moderator-only routes.
type ModerationRoutes interface {
	RegisterModeration(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps carries everything the router mounts. Nil optional fields switch the
// matching middleware off.
type Deps struct {
	Logger     *slog.Logger
	Tokens     auth.TokenValidator
	RateLimit  *ratelimit.Middleware
	Metrics    *platformmetrics.Metrics
	Gatherer   prometheus.Gatherer
	Checks     map[string]HealthCheck
	Public     []Routes
	Moderation []ModerationRoutes
}

// NewRouter wires the middleware chain and every module's routes. Handlers
// stay thin and delegate to their services.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return promhttp.InstrumentHandlerInFlight(d.Metrics.InFlight, next)
		})
		r.Use(request.Latency(d.Metrics.RequestLatency))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(d.Checks, d.Logger))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(d.Tokens, d.Logger))
		if d.RateLimit != nil {
			r.Use(d.RateLimit.ByMethod())
		}
		for _, h := range d.Public {
			h.Register(r)
		}
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(domain.RoleModerator, d.Logger))
			for _, h := range d.Moderation {
				h.RegisterModeration(r)
			}
		})
	})
	return r
}

func readiness(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
				report[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		httputil.WriteJSON(w, status, report)
	}
}
