package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masjid/pkg/platform/audit/store/postgres"
)

type passthroughRunner struct{}

func (passthroughRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOutbox struct {
	entries []postgres.Entry
	marked  []uuid.UUID
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, limit int) ([]postgres.Entry, error) {
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID, _ time.Time) error {
	f.marked = append(f.marked, ids...)
	return nil
}

type fakePublisher struct {
	got []postgres.Entry
	err error
}

func (f *fakePublisher) Publish(_ context.Context, entries []postgres.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, entries...)
	return nil
}

func entry(action string) postgres.Entry {
	return postgres.Entry{ID: uuid.New(), AggregateType: "suggestion", AggregateID: "7", EventType: action, Payload: []byte(`{}`)}
}

func TestFlushPublishesAndMarks(t *testing.T) {
	outbox := &fakeOutbox{entries: []postgres.Entry{entry("suggestion_created"), entry("suggestion_confirmed"), entry("suggestion_approved")}}
	pub := &fakePublisher{}
	r := New(passthroughRunner{}, outbox, pub, WithBatchSize(2), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	n, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, pub.got, 2)
	assert.Equal(t, []uuid.UUID{outbox.entries[0].ID, outbox.entries[1].ID}, outbox.marked)
}

func TestFlushDoesNotMarkOnPublishFailure(t *testing.T) {
	outbox := &fakeOutbox{entries: []postgres.Entry{entry("edit_created")}}
	r := New(passthroughRunner{}, outbox, &fakePublisher{err: errors.New("broker down")})

	n, err := r.Flush(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Empty(t, outbox.marked)
}

func TestRecordKeyedByAggregate(t *testing.T) {
	e := entry("edit_approved")
	rec := Record("masjid.audit", e)
	assert.Equal(t, "masjid.audit", rec.Topic)
	assert.Equal(t, "suggestion:7", string(rec.Key))
	assert.Equal(t, "event_type", rec.Headers[0].Key)
	assert.Equal(t, "edit_approved", string(rec.Headers[0].Value))
}
