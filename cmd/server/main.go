package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"masjid/internal/auth/token"
	"masjid/internal/meta"
	"masjid/internal/mosque/cache"
	mosquehandler "masjid/internal/mosque/handler"
	mosqueservice "masjid/internal/mosque/service"
	mosquestore "masjid/internal/mosque/store"
	"masjid/internal/platform/config"
	"masjid/internal/platform/database"
	"masjid/internal/platform/httpserver"
	"masjid/internal/platform/logger"
	platformmetrics "masjid/internal/platform/metrics"
	platformredis "masjid/internal/platform/redis"
	ratelimitmetrics "masjid/internal/ratelimit/metrics"
	ratelimit "masjid/internal/ratelimit/middleware"
	ratelimitmodels "masjid/internal/ratelimit/models"
	"masjid/internal/ratelimit/store/bucket"
	reviewhandler "masjid/internal/review/handler"
	reviewservice "masjid/internal/review/service"
	reviewstore "masjid/internal/review/store"
	"masjid/internal/screen"
	"masjid/internal/storage"
	submissionhandler "masjid/internal/submission/handler"
	submissionmetrics "masjid/internal/submission/metrics"
	"masjid/internal/submission/promotion"
	submissionservice "masjid/internal/submission/service"
	submissionstore "masjid/internal/submission/store"
	httptransport "masjid/internal/transport/http"
	"masjid/pkg/platform/audit"
	"masjid/pkg/platform/audit/relay"
	auditmemory "masjid/pkg/platform/audit/store/memory"
	auditpostgres "masjid/pkg/platform/audit/store/postgres"
	"masjid/pkg/platform/circuit"
	"masjid/pkg/platform/tx"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// backend groups the stores and unit of work of one persistence choice.
type backend struct {
	runner      tx.Runner
	mosques     mosqueservice.Store
	submissions submissionservice.Store
	reviews     reviewservice.Store
	audit       audit.Store
	outbox      *auditpostgres.Store
	db          *sql.DB
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	if be.db != nil {
		defer be.db.Close()
	}

	checks := map[string]httptransport.HealthCheck{}
	if be.db != nil {
		checks["postgres"] = be.db.PingContext
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	var readCache cache.Cache = cache.NewLocal(cfg.ReadCacheTTL)
	var buckets ratelimit.BucketStore = bucket.NewInMemoryBucketStore()
	if redisClient != nil {
		defer redisClient.Close()
		readCache = cache.NewRedis(redisClient, cfg.ReadCacheTTL, log)
		buckets = bucket.NewRedisBucketStore(redisClient)
		checks["redis"] = redisClient.Health
		log.Info("redis enabled for read cache and rate limits")
	}

	mosqueSvc := mosqueservice.New(be.mosques, be.runner,
		mosqueservice.WithCache(readCache),
		mosqueservice.WithAudit(be.audit),
		mosqueservice.WithLogger(log),
	)

	submissions := submissionservice.New(be.submissions, be.mosques, promotion.New(be.mosques),
		newScreen(ctx, cfg.Screen, reg, log), be.runner,
		submissionservice.WithThreshold(cfg.Submission.ConfirmationThreshold),
		submissionservice.WithAnonymousSubmissions(cfg.Submission.AllowAnonymousSubmission),
		submissionservice.WithAudit(be.audit),
		submissionservice.WithInvalidator(mosqueSvc),
		submissionservice.WithMetrics(submissionmetrics.New(reg)),
		submissionservice.WithLogger(log),
	)
	reviews := reviewservice.New(be.reviews, be.mosques, be.runner,
		reviewservice.WithAudit(be.audit),
		reviewservice.WithLogger(log),
	)

	limiter := ratelimit.New(buckets, log,
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
		ratelimit.WithPolicy(ratelimitmodels.ClassWrite, ratelimitmodels.Policy{Limit: cfg.RateLimit.WritesPerMinute, Window: time.Minute}),
		ratelimit.WithPolicy(ratelimitmodels.ClassRead, ratelimitmodels.Policy{Limit: cfg.RateLimit.ReadsPerMinute, Window: time.Minute}),
		ratelimit.WithGlobalThrottle(cfg.RateLimit.GlobalPerSecond, cfg.RateLimit.GlobalBurst),
		ratelimit.WithMetrics(ratelimitmetrics.New(reg)),
	)

	mosqueHandler := mosquehandler.New(mosqueSvc, log)
	submissionHandler := submissionhandler.New(submissions, log)
	reviewHandler := reviewhandler.New(reviews, log)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Tokens:     token.New(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer),
		RateLimit:  limiter,
		Metrics:    platformmetrics.New(reg),
		Gatherer:   reg,
		Checks:     checks,
		Public:     []httptransport.Routes{mosqueHandler, submissionHandler, reviewHandler, meta.New()},
		Moderation: []httptransport.ModerationRoutes{mosqueHandler, submissionHandler, reviewHandler},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Server.Addr, router), cfg.Server.ShutdownTimeout, log)
	})
	if be.outbox != nil && len(cfg.Kafka.Brokers) > 0 {
		publisher, err := relay.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer publisher.Close()
		if err := publisher.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		r := relay.New(be.runner, be.outbox, publisher,
			relay.WithInterval(cfg.Kafka.RelayInterval),
			relay.WithLogger(log),
		)
		g.Go(func() error { return r.Run(gctx) })
		log.Info("audit relay enabled", "topic", cfg.Kafka.AuditTopic)
	}

	log.Info("starting masjid directory", "addr", cfg.Server.Addr)
	return g.Wait()
}

// openBackend uses PostgreSQL when DATABASE_URL is set and the in-memory
// dataset otherwise.
func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (*backend, error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory storage")
		mem := storage.NewMemory()
		return &backend{
			runner:      mem,
			mosques:     mosquestore.NewInMemory(mem),
			submissions: submissionstore.NewInMemory(mem),
			reviews:     reviewstore.NewInMemory(mem),
			audit:       auditmemory.NewInMemoryStore(),
		}, nil
	}

	db, err := database.Open(ctx, database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := database.MigrateUp(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	outbox := auditpostgres.New(db)
	return &backend{
		runner:      database.NewTxRunner(db, cfg.Database.TxTimeout),
		mosques:     mosquestore.NewPostgres(db),
		submissions: submissionstore.NewPostgres(db),
		reviews:     reviewstore.NewPostgres(db),
		audit:       outbox,
		outbox:      outbox,
		db:          db,
	}, nil
}

// newScreen builds the content screen. Without an API key every text is
// judged by the heuristic.
func newScreen(ctx context.Context, cfg config.Screen, reg prometheus.Registerer, log *slog.Logger) *screen.Screen {
	opts := []screen.Option{
		screen.WithTimeout(cfg.Timeout),
		screen.WithBreaker(circuit.New("gemini", circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second))),
		screen.WithLogger(log),
		screen.WithMetrics(screen.NewMetrics(reg)),
	}
	gemini, err := screen.NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		log.Warn("content screen using heuristic only", "error", err)
		return screen.New(nil, opts...)
	}
	return screen.New(gemini, opts...)
}
