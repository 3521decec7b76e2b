package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/emrealmaoglu/trailium/internal/cache"
)

// redisAllow counts the request in a fixed window stored at
// rate_limit:<scope>:<key>. The counter is shared by every server instance.
func redisAllow(ctx context.Context, rc *cache.RedisClient, scope, key string, limit int, window time.Duration) (bool, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, ttl, err := rc.IncrWindow(ctx, RateLimitKey(scope, key), window)
	if err != nil {
		return false, 0, err
	}
	if count > int64(limit) {
		if ttl <= 0 {
			ttl = window
		}
		return false, int(math.Ceil(ttl.Seconds())), nil
	}
	return true, 0, nil
}

// RateLimitKey returns the Redis key of a throttle counter
func RateLimitKey(scope, key string) string {
	return fmt.Sprintf("rate_limit:%s:%s", scope, key)
}
