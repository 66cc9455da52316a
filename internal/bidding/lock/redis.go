package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"maklarsystem/pkg/platform/sentinel"
)

const (
	// Redis key prefix for listing locks
	listingLockKeyPrefix = "lock:listing:"

	DefaultTTL   = 10 * time.Second
	defaultRetry = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired holder cannot free a lock another instance has since taken.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a distributed per-listing lock built on SET NX PX.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// RedisOption configures a Redis lock.
type RedisOption func(*Redis)

// WithTTL sets how long a lock survives a crashed holder.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithRedisWait overrides DefaultWait.
func WithRedisWait(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.wait = d
	}
}

// WithRetryInterval sets the poll interval while the key is taken.
func WithRetryInterval(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.retry = d
		}
	}
}

// NewRedis constructs a Redis-backed lock. The client lifecycle is managed
// by the caller.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, ttl: DefaultTTL, wait: DefaultWait, retry: defaultRetry}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Acquire polls SET NX until it wins or the wait ends. Exhausting the wait
// returns sentinel.ErrLockHeld; a Redis failure returns
// sentinel.ErrUnavailable.
func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	redisKey := listingLockKeyPrefix + key
	token := uuid.NewString()

	waitCtx, cancel := waitContext(ctx, r.wait)
	defer cancel()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(waitCtx, redisKey, token, r.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("acquire %s: %w: %v", redisKey, sentinel.ErrUnavailable, err)
		}
		if ok {
			return r.release(redisKey, token), nil
		}
		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, fmt.Errorf("listing %s: %w", key, sentinel.ErrLockHeld)
			}
			return nil, waitCtx.Err()
		}
	}
}

func (r *Redis) release(key, token string) Release {
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("release %s: %w", key, err)
		}
		return nil
	}
}
