package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"masjid/pkg/domain"
	"masjid/pkg/requestcontext"
)

func TestNewEventFromContext(t *testing.T) {
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-9")
	ctx = requestcontext.WithPrincipal(ctx, domain.Principal{UserID: 12, Role: domain.RoleAuthenticated})

	ev := NewEvent(ctx, ActionSuggestionConfirmed, "suggestion", 3)

	assert.NotEqual(t, [16]byte{}, [16]byte(ev.ID))
	assert.Equal(t, now, ev.Timestamp)
	assert.Equal(t, domain.UserID(12), ev.ActorID)
	assert.Equal(t, "req-9", ev.RequestID)
	assert.Equal(t, CategoryCommunity, ev.Category)
}

func TestModeratorActionsAreModerationCategory(t *testing.T) {
	ctx := requestcontext.WithPrincipal(context.Background(), domain.Principal{UserID: 1, Role: domain.RoleModerator})
	ev := NewEvent(ctx, ActionSuggestionApproved, "suggestion", 3)
	assert.Equal(t, CategoryModeration, ev.Category)

	assert.Equal(t, CategoryModeration, ActionReviewRejected.Category())
	assert.Equal(t, CategoryCommunity, ActionEditCreated.Category())
}

func TestEventByOverridesContextPrincipal(t *testing.T) {
	ctx := requestcontext.WithPrincipal(context.Background(), domain.Principal{UserID: 1, Role: domain.RoleModerator})
	ev := NewEvent(ctx, ActionSuggestionConfirmed, "suggestion", 3).By(domain.Principal{UserID: 8, Role: domain.RoleAuthenticated})

	assert.Equal(t, domain.UserID(8), ev.ActorID)
	assert.Equal(t, domain.RoleAuthenticated, ev.ActorRole)
	assert.Equal(t, CategoryCommunity, ev.Category)
	assert.Equal(t, "threshold", ev.WithDetail("threshold").Detail)
}

func TestClientLabel(t *testing.T) {
	assert.Equal(t, "", ClientLabel(""))
	label := ClientLabel("Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0")
	assert.Contains(t, label, "Firefox")
	assert.Contains(t, ClientLabel("Googlebot/2.1 (+http://www.google.com/bot.html)"), "Googlebot")
}
