package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// windowScript keeps one sorted set per key whose members are hits scored by
// their time in milliseconds.  Hits older than the window are dropped before
// counting; a rejected hit is not recorded.
var windowScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now_ms - window_ms)
	local count = redis.call('ZCARD', key)

	if count < limit then
		redis.call('ZADD', key, now_ms, member)
		redis.call('PEXPIRE', key, window_ms)
		return { 1, limit - count - 1, 0 }
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry_ms = 0
	if oldest[2] then
		retry_ms = tonumber(oldest[2]) + window_ms - now_ms
		if retry_ms < 0 then retry_ms = 0 end
	end
	return { 0, 0, retry_ms }
`)

// Redis is a sliding-window limiter shared through Redis.
type Redis struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedis(rdb *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{rdb: rdb, limit: limit, window: window, now: time.Now}
}

func (l *Redis) Limit() int { return l.limit }

func (l *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	args := []interface{}{
		l.now().UnixMilli(),
		l.window.Milliseconds(),
		l.limit,
		uuid.NewString(), // members must be unique per hit
	}
	vals, err := windowScript.Run(ctx, l.rdb, []string{key}, args...).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result %v", vals)
	}
	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  int(vals[1]),
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// String is used in startup logs.
func (l *Redis) String() string {
	return "redis sliding window " + strconv.Itoa(l.limit) + "/" + l.window.String()
}
