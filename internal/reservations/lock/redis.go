package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sarpras:lock:"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) Backend {
	return &redisBackend{client: client}
}

func (b *redisBackend) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return b.client.SetNX(ctx, redisKeyPrefix+key, owner, ttl).Result()
}

func (b *redisBackend) Release(ctx context.Context, key, owner string) error {
	return releaseScript.Run(ctx, b.client, []string{redisKeyPrefix + key}, owner).Err()
}
