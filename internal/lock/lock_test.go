package lock

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLocalTryOnce(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()
	first, err := l.Obtain(ctx, "req-1")
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}
	if _, err := l.Obtain(ctx, "req-1"); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected ErrNotObtained, got %v", err)
	}
	other, err := l.Obtain(ctx, "req-2")
	if err != nil {
		t.Fatalf("independent key should be free: %v", err)
	}
	_ = other.Release(ctx)
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	second, err := l.Obtain(ctx, "req-1")
	if err != nil {
		t.Fatalf("expected key free after release: %v", err)
	}
	// A stale double release must not free the new holder's lease.
	_ = first.Release(ctx)
	if _, err := l.Obtain(ctx, "req-1"); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("stale release freed a live lease")
	}
	_ = second.Release(ctx)
}

func TestLocalSingleWinnerUnderContention(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Obtain(ctx, "hot"); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestLocalCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLocal().Obtain(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("PARTPULSE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skipf("PARTPULSE_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	l := NewRedis(rdb, "partpulse:test:", time.Second)
	key := time.Now().Format(time.RFC3339Nano)
	held, err := l.Obtain(ctx, key)
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}
	if _, err := l.Obtain(ctx, key); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected ErrNotObtained, got %v", err)
	}
	if err := held.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := held.Release(ctx); err != nil {
		t.Fatalf("second release should be tolerated: %v", err)
	}
}
