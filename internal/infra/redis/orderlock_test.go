package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRedisClient(t *testing.T) *goredis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestRedisOrderLockAcquireRelease(t *testing.T) {
	t.Parallel()

	lock, err := NewRedisOrderLock(newTestRedisClient(t))
	if err != nil {
		t.Fatalf("NewRedisOrderLock() error = %v", err)
	}

	acquired, err := lock.Acquire(context.Background(), "ord-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !acquired {
		t.Fatal("first acquire should succeed")
	}

	acquired, err = lock.Acquire(context.Background(), "ord-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if acquired {
		t.Fatal("second acquire for the same order must be rejected")
	}

	// Leases for different orders are independent.
	acquired, err = lock.Acquire(context.Background(), "ord-2", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !acquired {
		t.Fatal("acquire for a different order should succeed")
	}

	if err := lock.Release(context.Background(), "ord-1"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	acquired, err = lock.Acquire(context.Background(), "ord-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !acquired {
		t.Fatal("acquire after release should succeed")
	}
}

func TestRedisOrderLockReleaseDoesNotFreeForeignLease(t *testing.T) {
	t.Parallel()

	client := newTestRedisClient(t)

	first, err := newRedisOrderLock(client, func() string { return "token-a" })
	if err != nil {
		t.Fatalf("newRedisOrderLock() error = %v", err)
	}
	second, err := newRedisOrderLock(client, func() string { return "token-b" })
	if err != nil {
		t.Fatalf("newRedisOrderLock() error = %v", err)
	}

	acquired, err := first.Acquire(context.Background(), "ord-1", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("first.Acquire() = %v, %v", acquired, err)
	}

	// The second holder never acquired the lease; releasing must be a no-op.
	if err := second.Release(context.Background(), "ord-1"); err != nil {
		t.Fatalf("second.Release() error = %v", err)
	}

	acquired, err = second.Acquire(context.Background(), "ord-1", time.Minute)
	if err != nil {
		t.Fatalf("second.Acquire() error = %v", err)
	}
	if acquired {
		t.Fatal("lease must still be held by the first holder")
	}
}

func TestRedisOrderLockValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisOrderLock(nil); err == nil {
		t.Fatal("expected error for nil client")
	}

	lock, err := NewRedisOrderLock(newTestRedisClient(t))
	if err != nil {
		t.Fatalf("NewRedisOrderLock() error = %v", err)
	}

	if _, err := lock.Acquire(context.Background(), "  ", time.Minute); err == nil {
		t.Fatal("expected error for empty order id")
	}
	if err := lock.Release(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty order id")
	}
}
