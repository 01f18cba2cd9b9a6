package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsar/internal/platform/config"
)

func TestNewWithoutURLIsDisabled(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestOptions(t *testing.T) {
	t.Run("config overrides the URL defaults", func(t *testing.T) {
		opts, err := options(config.RedisConfig{
			URL:         "redis://cache.internal:6380/2",
			PoolSize:    7,
			DialTimeout: 2 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 7, opts.PoolSize)
		assert.Equal(t, 2*time.Second, opts.DialTimeout)
		assert.Equal(t, clientName, opts.ClientName)
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := options(config.RedisConfig{URL: "http://nope"})
		require.Error(t, err)
	})
}
