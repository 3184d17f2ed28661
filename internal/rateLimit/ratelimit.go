package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/robertarktes/airline-booking-bff/internal/adapters/redis"
)

type RateLimiter struct {
	redis *redisadapter.Cache
}

func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow fails open when Redis is unavailable.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	n, err := rl.redis.IncrWindow(ctx, "rl:"+key, period)
	if err != nil {
		return true
	}
	return n <= int64(rate)
}
