package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const scanLockKey = "crew-compliance:scan:lock"

// releaseScript deletes the lock only if it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type ScanLock struct {
	redis *redis.Client
	key   string
}

func NewScanLock(redisClient *redis.Client) *ScanLock {
	return &ScanLock{redis: redisClient, key: scanLockKey}
}

func (l *ScanLock) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.redis.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis acquire scan lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *ScanLock) Release(ctx context.Context, token string) error {
	if err := releaseScript.Run(ctx, l.redis, []string{l.key}, token).Err(); err != nil {
		return fmt.Errorf("redis release scan lock: %w", err)
	}
	return nil
}
