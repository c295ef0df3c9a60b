package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CONFIRMATION_THRESHOLD", "")
	t.Setenv("ALLOW_ANONYMOUS_SUBMISSIONS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Submission.ConfirmationThreshold)
	assert.False(t, cfg.Submission.AllowAnonymousSubmission)
	assert.Empty(t, cfg.Database.URL)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.ReadCacheTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MASJID_ADDR", ":9090")
	t.Setenv("CONFIRMATION_THRESHOLD", "5")
	t.Setenv("ALLOW_ANONYMOUS_SUBMISSIONS", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("SCREEN_TIMEOUT", "2s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Submission.ConfirmationThreshold)
	assert.True(t, cfg.Submission.AllowAnonymousSubmission)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Screen.Timeout)
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("READ_CACHE_TTL", "soon")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "READ_CACHE_TTL")
	})

	t.Run("threshold below one", func(t *testing.T) {
		t.Setenv("CONFIRMATION_THRESHOLD", "0")
		_, err := FromEnv()
		require.Error(t, err)
	})
}
