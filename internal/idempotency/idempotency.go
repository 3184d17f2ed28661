// Package idempotency replays the stored response of a write that was
// already performed under the same Idempotency-Key.
package idempotency

import (
	"context"
	"time"

	redisadapter "github.com/robertarktes/airline-booking-bff/internal/adapters/redis"
)

type Idempotency struct {
	redis *redisadapter.Idempotency
	ttl   time.Duration
}

func NewIdempotency(redis *redisadapter.Idempotency, ttl time.Duration) *Idempotency {
	return &Idempotency{redis: redis, ttl: ttl}
}

type Response struct {
	Status int
	Result []byte
}

// RequestKey binds a client Idempotency-Key to the session and the request
// it was sent with. It returns "" when the client sent no key.
func RequestKey(sessionID, method, path, key string) string {
	if key == "" {
		return ""
	}
	return sessionID + "|" + method + " " + path + "|" + key
}

// scoped keys keep tenants from replaying each other's responses.
func scoped(tenantID, key string) string {
	return tenantID + ":" + key
}

// Get returns nil when key is empty or nothing was stored for it.
func (i *Idempotency) Get(ctx context.Context, tenantID, key string) (*Response, error) {
	if key == "" {
		return nil, nil
	}
	stored, err := i.redis.Get(ctx, scoped(tenantID, key))
	if err != nil || stored == nil {
		return nil, err
	}
	return &Response{Status: stored.Status, Result: stored.Result}, nil
}

// Set stores successful responses only; failed writes stay retryable.
func (i *Idempotency) Set(ctx context.Context, tenantID, key string, resp Response) error {
	if key == "" || resp.Status >= 300 {
		return nil
	}
	return i.redis.Set(ctx, scoped(tenantID, key), redisadapter.IdempResponse{Status: resp.Status, Result: resp.Result}, i.ttl)
}
