// Package redis provides a Redis-backed per-user lock so that login and
// logout-all stay serialized per account when the backend runs more than one
// replica against the same store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	lockTTL       = 5 * time.Second
	retryInterval = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our owner token, so a
// lock that expired and was re-acquired by another replica is never released
// from here.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// UserLock implements session.Locker on Redis SET NX PX.
type UserLock struct {
	client *redis.Client
	prefix string
}

// NewUserLock creates a [UserLock]. prefix namespaces the lock keys.
func NewUserLock(client *redis.Client, prefix string) *UserLock {
	return &UserLock{client: client, prefix: prefix}
}

func (l *UserLock) redisKey(key string) string {
	return fmt.Sprintf("%s:userlock:%s", l.prefix, key)
}

// Lock polls SET NX until the key is acquired or ctx is done. The returned
// release func is owner checked; releasing a lock lost to TTL expiry is a
// no-op.
func (l *UserLock) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.redisKey(key)
	owner := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, owner, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire redis lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	return func() {
		// Release on a background context: the request context may already be
		// cancelled on error exit paths.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, owner).Err(); err != nil {
			// Worst case the key falls back to TTL expiry.
			log.Warn().Err(err).Str("key", redisKey).Msg("failed to release user lock")
		}
	}, nil
}
