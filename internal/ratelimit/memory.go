package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory is a process-local sliding-window limiter.  It keeps the hit times
// of every key seen within the last window.
type Memory struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
	sweep  time.Time
}

func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *Memory) Limit() int { return l.limit }

func (l *Memory) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.sweep) > l.window {
		l.evict(cutoff)
		l.sweep = now
	}

	kept := prune(l.hits[key], cutoff)
	if len(kept) >= l.limit {
		l.hits[key] = kept
		return Decision{RetryAfter: kept[0].Sub(cutoff)}, nil
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return Decision{Allowed: true, Remaining: l.limit - len(kept)}, nil
}

// evict drops keys whose every hit is older than cutoff.
func (l *Memory) evict(cutoff time.Time) {
	for k, ts := range l.hits {
		if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
			delete(l.hits, k)
		}
	}
}

// prune removes the leading hits at or before cutoff; ts is sorted.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

func (l *Memory) String() string {
	return "memory sliding window " + strconv.Itoa(l.limit) + "/" + l.window.String()
}
