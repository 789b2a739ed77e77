package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a crashed holder can block a key.
const DefaultTTL = 30 * time.Second

// Redis is a Locker shared across processes through a Redis server.
type Redis struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps rdb in a redislock client. Keys are namespaced by prefix.
func NewRedis(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "partpulse:lock:"
	}
	return &Redis{client: redislock.New(rdb), prefix: prefix, ttl: ttl}
}

// Obtain acquires key with a single attempt.
func (r *Redis) Obtain(ctx context.Context, key string) (Lock, error) {
	held, err := r.client.Obtain(ctx, r.prefix+key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain redis lock %s: %w", key, err)
	}
	return redisLock{lock: held}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

func (l redisLock) Release(ctx context.Context) error {
	if err := l.lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return err
	}
	return nil
}
