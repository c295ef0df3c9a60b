package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masjid/pkg/platform/audit"
	"masjid/pkg/platform/tx"
)

func TestAppendOutsideTxIsImmediate(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, audit.NewEvent(ctx, audit.ActionSuggestionCreated, "suggestion", 1)))

	events, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionSuggestionCreated, events[0].Action)
}

func TestAppendInsideTxWaitsForCommit(t *testing.T) {
	s := NewInMemoryStore()
	ctx, hooks := tx.WithHooks(context.Background())
	require.NoError(t, s.Append(ctx, audit.NewEvent(ctx, audit.ActionEditApproved, "edit", 4)))

	events, _ := s.ListAll(context.Background())
	assert.Empty(t, events, "not visible before commit")

	hooks.Run(context.Background())
	events, _ = s.ListBySubject(context.Background(), "edit", 4)
	assert.Len(t, events, 1)
}
