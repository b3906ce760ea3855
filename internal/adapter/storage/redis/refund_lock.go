package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RefundLock implements ports.RefundLocker using Redis SET NX with an owner token.
type RefundLock struct {
	client *goredis.Client
	prefix string
}

// NewRefundLock creates a new Redis-backed refund lock.
func NewRefundLock(client *goredis.Client) *RefundLock {
	return &RefundLock{
		client: client,
		prefix: "refund:lock:",
	}
}

// Acquire takes the lock for a payment reference.
// Returns the owner token and true if acquired, or "" and false if already held.
func (l *RefundLock) Acquire(ctx context.Context, reference string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	result, err := l.client.SetArgs(ctx, l.prefix+reference, token, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis refund lock acquire: %w", err)
	}
	if result != "OK" {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock if token still owns it. Releasing a lock that expired
// or passed to another holder is a no-op.
func (l *RefundLock) Release(ctx context.Context, reference, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + reference}, token).Err(); err != nil {
		return fmt.Errorf("redis refund lock release: %w", err)
	}
	return nil
}
