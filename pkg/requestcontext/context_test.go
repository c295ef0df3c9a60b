package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"masjid/pkg/domain"
)

func TestPrincipalDefaultsToGuest(t *testing.T) {
	p := Principal(context.Background())
	assert.Equal(t, domain.Guest, p)
	assert.False(t, p.IsAuthenticated())
}

func TestValuesRoundTrip(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := WithPrincipal(context.Background(), domain.Principal{UserID: 9, Role: domain.RoleModerator})
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTime(ctx, fixed)
	ctx = WithClientMetadata(ctx, "10.0.0.1", "curl/8")

	assert.Equal(t, domain.UserID(9), UserID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, fixed, Now(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "curl/8", UserAgent(ctx))
}
