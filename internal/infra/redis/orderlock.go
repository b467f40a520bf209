package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaflow/pharmaml-gateway/internal/sendlock"
	goredis "github.com/redis/go-redis/v9"
)

const defaultLeaseTTL = 30 * time.Second

// releaseScript deletes the lease only if this holder still owns it, so a
// lease that expired and was re-acquired by another sender is never freed
// by the first holder.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ sendlock.OrderLock = (*RedisOrderLock)(nil)

// RedisOrderLock is a distributed per-order send lease backed by Redis.
type RedisOrderLock struct {
	client   *goredis.Client
	script   *goredis.Script
	newToken func() string

	mu     sync.Mutex
	tokens map[string]string
}

func NewRedisOrderLock(client *goredis.Client) (*RedisOrderLock, error) {
	return newRedisOrderLock(client, uuid.NewString)
}

func newRedisOrderLock(client *goredis.Client, tokenFn func() string) (*RedisOrderLock, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if tokenFn == nil {
		tokenFn = uuid.NewString
	}

	return &RedisOrderLock{
		client:   client,
		script:   releaseScript,
		newToken: tokenFn,
		tokens:   make(map[string]string),
	}, nil
}

func (l *RedisOrderLock) Acquire(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	if l == nil || l.client == nil {
		return false, fmt.Errorf("order lock is not initialized")
	}

	normalizedOrderID := strings.TrimSpace(orderID)
	if normalizedOrderID == "" {
		return false, fmt.Errorf("order id is required")
	}
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}

	if ctx == nil {
		ctx = context.Background()
	}

	token := l.newToken()
	acquired, err := l.client.SetNX(ctx, lockKey(normalizedOrderID), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire order lease: %w", err)
	}
	if !acquired {
		return false, nil
	}

	l.mu.Lock()
	l.tokens[normalizedOrderID] = token
	l.mu.Unlock()

	return true, nil
}

func (l *RedisOrderLock) Release(ctx context.Context, orderID string) error {
	if l == nil || l.client == nil || l.script == nil {
		return fmt.Errorf("order lock is not initialized")
	}

	normalizedOrderID := strings.TrimSpace(orderID)
	if normalizedOrderID == "" {
		return fmt.Errorf("order id is required")
	}

	l.mu.Lock()
	token, ok := l.tokens[normalizedOrderID]
	delete(l.tokens, normalizedOrderID)
	l.mu.Unlock()

	if !ok {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if err := l.script.Run(ctx, l.client, []string{lockKey(normalizedOrderID)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release order lease: %w", err)
	}
	return nil
}

func lockKey(orderID string) string {
	return fmt.Sprintf("sendlock:order:%s", orderID)
}
