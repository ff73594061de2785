package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitStore backs the fixed-window limiter with an INCR counter per
// (category, identifier) key. The first hit of a window sets the key TTL;
// expiry is the window reset.
type RedisRateLimitStore struct {
	client *redis.Client
}

func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func (s *RedisRateLimitStore) Hit(ctx context.Context, category, identifier string, window time.Duration) (int64, error) {
	key := "census:ratelimit:" + category + ":" + identifier

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		// ExpireNX arms the window only when the key carries no TTL yet,
		// which also repairs a counter whose expiry write was lost.
		p.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
