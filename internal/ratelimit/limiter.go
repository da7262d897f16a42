// Package ratelimit implements sliding-window request limiters: at most N
// hits per key within any window of length W.  The Redis implementation is
// shared by every process of a service; the memory one is used when Redis is
// not configured.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits or rejects a hit on key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Limit() int
}

// New returns a Redis-backed limiter when rdb is non-nil and a process-local
// one otherwise.
func New(rdb *redis.Client, limit int, window time.Duration) Limiter {
	if rdb != nil {
		return NewRedis(rdb, limit, window)
	}
	return NewMemory(limit, window)
}
