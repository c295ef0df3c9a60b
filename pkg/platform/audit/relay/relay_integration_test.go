//go:build integration

package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"masjid/internal/platform/database"
	"masjid/pkg/platform/audit"
	"masjid/pkg/platform/audit/store/postgres"
	"masjid/pkg/testutil/containers"
)

type KafkaRelaySuite struct {
	suite.Suite
	ctx       context.Context
	pg        *containers.PostgresContainer
	brokers   []string
	topic     string
	outbox    *postgres.Store
	publisher *KafkaPublisher
}

func TestKafkaRelaySuite(t *testing.T) {
	suite.Run(t, new(KafkaRelaySuite))
}

func (s *KafkaRelaySuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.brokers = containers.GetManager().GetRedpanda(s.T()).Brokers
}

func (s *KafkaRelaySuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
	s.outbox = postgres.New(s.pg.DB)
	s.topic = "masjid.audit." + uuid.NewString()[:8]

	pub, err := NewKafkaPublisher(s.brokers, s.topic)
	s.Require().NoError(err)
	s.publisher = pub
	s.Require().NoError(pub.EnsureTopic(s.ctx, 1, 1))
}

func (s *KafkaRelaySuite) TearDownTest() {
	s.publisher.Close()
}

func (s *KafkaRelaySuite) appendEvents(actions ...audit.Action) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, action := range actions {
		ev := audit.Event{
			ID:          uuid.New(),
			Category:    action.Category(),
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			Action:      action,
			ActorID:     7,
			SubjectType: "suggestion",
			SubjectID:   42,
		}
		s.Require().NoError(s.outbox.Append(s.ctx, ev))
	}
}

func (s *KafkaRelaySuite) consume(n int) []*kgo.Record {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	var records []*kgo.Record
	for len(records) < n {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			s.FailNow(fmt.Sprintf("timed out after %d of %d records", len(records), n))
		}
		fetches.EachRecord(func(r *kgo.Record) {
			records = append(records, r)
		})
	}
	return records
}

func header(r *kgo.Record, key string) string {
	for _, h := range r.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (s *KafkaRelaySuite) TestFlushPublishesOutboxInOrder() {
	s.appendEvents(audit.ActionSuggestionCreated, audit.ActionSuggestionConfirmed, audit.ActionSuggestionApproved)

	r := New(database.NewTxRunner(s.pg.DB, 0), s.outbox, s.publisher,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	n, err := r.Flush(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, n)

	backlog, err := s.outbox.CountUnpublished(s.ctx)
	s.Require().NoError(err)
	s.Zero(backlog)

	records := s.consume(3)
	s.Equal(
		[]string{string(audit.ActionSuggestionCreated), string(audit.ActionSuggestionConfirmed), string(audit.ActionSuggestionApproved)},
		[]string{header(records[0], "event_type"), header(records[1], "event_type"), header(records[2], "event_type")},
	)
	for _, rec := range records {
		s.Equal("suggestion:42", string(rec.Key))
		s.NotEmpty(header(rec, "event_id"))

		var payload postgres.Payload
		s.Require().NoError(json.Unmarshal(rec.Value, &payload))
		s.Equal(int64(42), payload.SubjectID)
		s.Equal(int64(7), payload.ActorID)
	}
}

func (s *KafkaRelaySuite) TestSecondFlushIsEmpty() {
	s.appendEvents(audit.ActionEditCreated)

	r := New(database.NewTxRunner(s.pg.DB, 0), s.outbox, s.publisher)
	n, err := r.Flush(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = r.Flush(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}
