package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/reviewhub/credential-service/internal/observability"
)

var redisIdentityUnlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

const redisIdentityLockPollInterval = 25 * time.Millisecond

// RedisIdentityLocker holds a SET NX PX lease per identity so replicas share
// the same serialization. The lease expires on its own if the holder dies.
type RedisIdentityLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
	logger *slog.Logger
}

func NewRedisIdentityLocker(client redis.UniversalClient, prefix string, ttl, wait time.Duration, logger *slog.Logger) *RedisIdentityLocker {
	if prefix == "" {
		prefix = "credential_lock"
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisIdentityLocker{client: client, prefix: prefix, ttl: ttl, wait: wait, logger: logger}
}

func (l *RedisIdentityLocker) Lock(ctx context.Context, identity string) (func(), error) {
	key := l.lockKey(identity)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			observability.RecordIdentityLockEvent(ctx, "redis", "error")
			return nil, fmt.Errorf("acquire identity lock: %w", err)
		}
		if ok {
			observability.RecordIdentityLockEvent(ctx, "redis", "acquired")
			return l.unlockFunc(key, token), nil
		}
		if !time.Now().Before(deadline) {
			observability.RecordIdentityLockEvent(ctx, "redis", "timeout")
			return nil, fmt.Errorf("%w: %w", ErrPersistenceConflict, errIdentityLockTimeout)
		}
		timer := time.NewTimer(redisIdentityLockPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			observability.RecordIdentityLockEvent(ctx, "redis", "timeout")
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *RedisIdentityLocker) unlockFunc(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		// The caller's context may already be done; the release must still reach Redis.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := redisIdentityUnlockScript.Run(ctx, l.client, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("identity lock release failed", "key", key, "error", err)
		}
	}
}

func (l *RedisIdentityLocker) lockKey(identity string) string {
	return fmt.Sprintf("%s:identity:%s", l.prefix, identity)
}
