// Package relay drains the audit outbox into Kafka.
package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"masjid/pkg/platform/audit/store/postgres"
	"masjid/pkg/platform/tx"
)

// Outbox is the durable side of the relay.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]postgres.Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Publisher delivers outbox entries downstream.
type Publisher interface {
	Publish(ctx context.Context, entries []postgres.Entry) error
}

// Relay polls the outbox and publishes each batch at least once. Entries are
// marked published in the same transaction that locked them, so a crash
// between publish and commit causes a redelivery, never a loss.
type Relay struct {
	runner    tx.Runner
	outbox    Outbox
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(runner tx.Runner, outbox Outbox, publisher Publisher, opts ...Option) *Relay {
	r := &Relay{
		runner:    runner,
		outbox:    outbox,
		publisher: publisher,
		logger:    slog.Default(),
		interval:  2 * time.Second,
		batchSize: 100,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := r.Flush(ctx)
			if err != nil {
				r.logger.WarnContext(ctx, "audit relay flush failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.DebugContext(ctx, "audit relay published", "count", n)
			}
		}
	}
}

// Flush publishes one batch and returns how many entries were delivered.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	published := 0
	err := r.runner.RunInTx(ctx, func(ctx context.Context) error {
		entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		if err := r.publisher.Publish(ctx, entries); err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if err := r.outbox.MarkPublished(ctx, ids, r.now().UTC()); err != nil {
			return err
		}
		published = len(entries)
		return nil
	})
	return published, err
}
