//go:build integration

package lock_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"maklarsystem/internal/bidding/lock"
	"maklarsystem/pkg/platform/sentinel"
	"maklarsystem/pkg/testutil/containers"
)

type RedisLockSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisLockSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockSuite))
}

func (s *RedisLockSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisLockSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockSuite) TestSecondAcquireWaitsOut() {
	ctx := context.Background()
	l := lock.NewRedis(s.redis.Client, lock.WithRedisWait(100*time.Millisecond))

	release, err := l.Acquire(ctx, "listing-1")
	s.Require().NoError(err)

	_, err = l.Acquire(ctx, "listing-1")
	s.True(errors.Is(err, sentinel.ErrLockHeld))

	s.Require().NoError(release(ctx))
	release, err = l.Acquire(ctx, "listing-1")
	s.Require().NoError(err)
	s.Require().NoError(release(ctx))
}

// TestExpiredHolderCannotReleaseSuccessor verifies the token check: a holder
// whose TTL lapsed must not delete the lock a second caller now owns.
func (s *RedisLockSuite) TestExpiredHolderCannotReleaseSuccessor() {
	ctx := context.Background()
	l := lock.NewRedis(s.redis.Client,
		lock.WithTTL(50*time.Millisecond),
		lock.WithRedisWait(time.Second))

	stale, err := l.Acquire(ctx, "listing-2")
	s.Require().NoError(err)
	time.Sleep(80 * time.Millisecond)

	fresh, err := l.Acquire(ctx, "listing-2")
	s.Require().NoError(err)

	s.Require().NoError(stale(ctx))
	exists, err := s.redis.Client.Exists(ctx, "lock:listing:listing-2").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)

	s.Require().NoError(fresh(ctx))
}

func (s *RedisLockSuite) TestConcurrentHoldersAreExclusive() {
	ctx := context.Background()
	l := lock.NewRedis(s.redis.Client,
		lock.WithRedisWait(5*time.Second),
		lock.WithRetryInterval(5*time.Millisecond))

	var inside, violations atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "listing-3")
			if err != nil {
				return
			}
			if inside.Add(1) > 1 {
				violations.Add(1)
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			_ = release(ctx)
		}()
	}
	wg.Wait()
	s.Zero(violations.Load())
}
