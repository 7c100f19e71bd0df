package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// Redis is a fixed-window limiter backed by a shared Redis counter, for
// deployments running more than one instance behind a load balancer.
// INCR and EXPIRE NX run in one pipeline, so the first attempt of a window
// both creates the counter and arms its expiry.
type Redis struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
}

// NewRedis creates a Redis-backed limiter with the same semantics as Memory.
func NewRedis(client redis.UniversalClient, limit int, window time.Duration) *Redis {
	return &Redis{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Admit increments the window counter for the key and checks it against the
// limit. Window expiry is handled by the key TTL.
func (r *Redis) Admit(ctx context.Context, endpoint, client string) (Decision, error) {
	key := redisKeyPrefix + bucketKey(endpoint, client)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis admit: %w", err)
	}

	count := int(incr.Val())
	if count > r.limit {
		retryAfter := r.window
		if ttl, err := r.client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			retryAfter = ttl
		}
		return Decision{RetryAfter: retryAfter}, nil
	}

	return Decision{Allowed: true, Remaining: r.limit - count}, nil
}
