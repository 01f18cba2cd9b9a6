package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Discovery.Workers)
		assert.Equal(t, 30*time.Second, cfg.Discovery.ConnectorTimeout)
		assert.Equal(t, 20, cfg.Discovery.RateLimit)
		assert.Equal(t, time.Minute, cfg.Discovery.RateWindow)
		assert.Equal(t, 512_000, cfg.Detection.MaxContentBytes)
		assert.Equal(t, 500, cfg.Detection.MaxMatchesPerPattern)
		assert.Equal(t, 256, cfg.Detection.CacheEntries)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DSAR_WORKERS", "8")
		t.Setenv("DSAR_CONNECTOR_TIMEOUT", "5s")
		t.Setenv("DSAR_KAFKA_BROKERS", "a:9092, b:9092,,")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Discovery.Workers)
		assert.Equal(t, 5*time.Second, cfg.Discovery.ConnectorTimeout)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("malformed value is an error", func(t *testing.T) {
		t.Setenv("DSAR_RATE_WINDOW", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DSAR_RATE_WINDOW")
	})

	t.Run("llm needs an api key", func(t *testing.T) {
		t.Setenv("DSAR_ENABLE_LLM", "true")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("zero workers rejected", func(t *testing.T) {
		t.Setenv("DSAR_WORKERS", "0")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}
