package joincode

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// claimTTL keeps a claim alive long enough for the registry write to land.
// After that the registry itself is the source of truth for uniqueness.
const claimTTL = 5 * time.Minute

// RedisArbiter claims codes with SET NX so two concurrent creators cannot
// both pass the registry check with the same candidate.
type RedisArbiter struct {
	client *redis.Client
}

func NewRedisArbiter(client *redis.Client) *RedisArbiter {
	return &RedisArbiter{client: client}
}

func (a *RedisArbiter) Claim(ctx context.Context, code string) (bool, error) {
	return a.client.SetNX(ctx, "joincode:"+code, "1", claimTTL).Result()
}
