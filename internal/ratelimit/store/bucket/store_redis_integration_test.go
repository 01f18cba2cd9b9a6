//go:build integration

package bucket_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"dsar/internal/ratelimit/store/bucket"
	"dsar/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = bucket.NewRedis(s.redis.Client.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

// Workers on several hosts share one case bucket; the sum of allowed
// requests must never exceed the limit.
func (s *RedisStoreSuite) TestConcurrentAllowNeverOvershoots() {
	ctx := context.Background()
	const (
		limit      = 10
		goroutines = 50
	)

	var wg sync.WaitGroup
	var allowed atomic.Int32
	for range goroutines {
		wg.Go(func() {
			res, err := s.store.Allow(ctx, "dsar:case:concurrent", limit, time.Minute)
			s.Require().NoError(err)
			if res.Allowed {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()

	s.Equal(int32(limit), allowed.Load())
	count, err := s.store.GetCurrentCount(ctx, "dsar:case:concurrent")
	s.Require().NoError(err)
	s.Equal(limit, count)
}

func (s *RedisStoreSuite) TestDeniedResultCarriesRetryAfter() {
	ctx := context.Background()
	_, err := s.store.AllowN(ctx, "dsar:case:retry", 3, 3, time.Minute)
	s.Require().NoError(err)

	res, err := s.store.Allow(ctx, "dsar:case:retry", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Positive(res.RetryAfter)
	s.LessOrEqual(res.RetryAfter, time.Minute)
}

func (s *RedisStoreSuite) TestReset() {
	ctx := context.Background()
	_, err := s.store.AllowN(ctx, "dsar:case:reset", 2, 2, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "dsar:case:reset"))

	res, err := s.store.Allow(ctx, "dsar:case:reset", 2, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
	s.Equal(1, res.Remaining)
}
