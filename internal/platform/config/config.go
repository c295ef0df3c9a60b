// Package config reads process configuration from the environment. A .env
// file in the working directory is loaded first when present; variables that
// are already set take precedence over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the server.
type Config struct {
	Server     Server
	Database   Database
	Redis      RedisConfig
	Kafka      Kafka
	Auth       Auth
	Screen     Screen
	Submission Submission
	RateLimit  RateLimit
	Log        Log

	ReadCacheTTL time.Duration
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

// RedisConfig controls the read cache and shared rate limit buckets.
// An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the audit outbox relay. No brokers disables it.
type Kafka struct {
	Brokers       []string
	AuditTopic    string
	RelayInterval time.Duration
}

type Auth struct {
	JWTSigningKey string
	JWTIssuer     string
}

type Screen struct {
	GeminiAPIKey string
	Model        string
	Timeout      time.Duration
}

type Submission struct {
	ConfirmationThreshold    int
	AllowAnonymousSubmission bool
}

type RateLimit struct {
	Disabled        bool
	WritesPerMinute int
	ReadsPerMinute  int
	GlobalPerSecond float64
	GlobalBurst     int
}

type Log struct {
	Level  string
	Format string
}

// FromEnv builds a Config from environment variables so main stays lean.
// Malformed numeric or duration values are reported rather than defaulted.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	r := reader{}
	cfg := Config{
		Server: Server{
			Addr:            r.str("MASJID_ADDR", ":8080"),
			ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: Database{
			URL:             r.str("DATABASE_URL", ""),
			MaxOpenConns:    r.int("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    r.int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: r.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			TxTimeout:       r.duration("TX_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          r.str("REDIS_URL", ""),
			PoolSize:     r.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: r.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:       r.list("KAFKA_BROKERS"),
			AuditTopic:    r.str("KAFKA_AUDIT_TOPIC", "masjid.audit"),
			RelayInterval: r.duration("KAFKA_RELAY_INTERVAL", 2*time.Second),
		},
		Auth: Auth{
			// Development default; always override in production.
			JWTSigningKey: r.str("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     r.str("JWT_ISSUER", "masjid"),
		},
		Screen: Screen{
			GeminiAPIKey: r.str("GEMINI_API_KEY", ""),
			Model:        r.str("SCREEN_MODEL", ""),
			Timeout:      r.duration("SCREEN_TIMEOUT", 8*time.Second),
		},
		Submission: Submission{
			ConfirmationThreshold:    r.int("CONFIRMATION_THRESHOLD", 3),
			AllowAnonymousSubmission: r.bool("ALLOW_ANONYMOUS_SUBMISSIONS", false),
		},
		RateLimit: RateLimit{
			Disabled:        r.bool("RATE_LIMIT_DISABLED", false),
			WritesPerMinute: r.int("RATE_LIMIT_WRITES_PER_MINUTE", 30),
			ReadsPerMinute:  r.int("RATE_LIMIT_READS_PER_MINUTE", 300),
			GlobalPerSecond: r.float("RATE_LIMIT_GLOBAL_PER_SECOND", 50),
			GlobalBurst:     r.int("RATE_LIMIT_GLOBAL_BURST", 100),
		},
		Log: Log{
			Level:  r.str("LOG_LEVEL", "info"),
			Format: r.str("LOG_FORMAT", "json"),
		},
		ReadCacheTTL: r.duration("READ_CACHE_TTL", 5*time.Minute),
	}
	if r.err != nil {
		return Config{}, r.err
	}
	if cfg.Submission.ConfirmationThreshold < 1 {
		return Config{}, fmt.Errorf("CONFIRMATION_THRESHOLD must be at least 1")
	}
	return cfg, nil
}

// reader keeps the first parse error so FromEnv can report it once.
type reader struct {
	err error
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) int(key string, def int) int {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return f
}

func (r *reader) bool(key string, def bool) bool {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return d
}

func (r *reader) list(key string) []string {
	raw := r.str(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
