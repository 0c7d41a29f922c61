package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/raknago/parking-backend/internal/domain"
)

// FixedWindowLimiter counts hits per key in Redis:
// INCR key; on the first hit PEXPIRE key window.
// Callers build keys that already include scope, identity and bucket.
type FixedWindowLimiter struct {
	rdb *goredis.Client
	now func() time.Time
}

func NewFixedWindowLimiter(c *Client) *FixedWindowLimiter {
	l := &FixedWindowLimiter{now: time.Now}
	if c != nil {
		l.rdb = c.rdb
	}
	return l
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // 0 if allowed
	ResetAt    time.Time
	Count      int
}

// returns {count, ttl_ms}
var fixedWindowScript = goredis.NewScript(`
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {c, ttl}
`)

// Allow reports whether one more hit on key fits in limit per window.
// Without Redis every hit is allowed.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 || l.rdb == nil {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	if window < time.Millisecond {
		window = time.Minute
	}

	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, domain.ErrRedisUnavailable(fmt.Errorf("ratelimit eval: %w", err))
	}
	arr, ok := res.([]any)
	if !ok || len(arr) != 2 {
		return Decision{}, domain.ErrRedisUnavailable(fmt.Errorf("ratelimit eval: unexpected result %T", res))
	}
	count, _ := arr[0].(int64)
	ttlms, _ := arr[1].(int64)
	ttl := time.Duration(ttlms) * time.Millisecond

	d := Decision{
		Allowed:   int(count) <= limit,
		Limit:     limit,
		Remaining: max(0, limit-int(count)),
		Count:     int(count),
		ResetAt:   l.now().Add(ttl),
	}
	if !d.Allowed {
		d.RetryAfter = window
		if ttl > 0 {
			d.RetryAfter = ttl
		}
	}
	return d, nil
}

// WindowKey builds "rl:<scope>:<identity>:<bucket>" so each window gets its own key.
func WindowKey(scope, identity string, window time.Duration, now time.Time) string {
	if window <= 0 {
		window = time.Minute
	}
	bucket := now.UnixNano() / int64(window)
	return fmt.Sprintf("rl:%s:%s:%d", scope, identity, bucket)
}

// WindowThrottle applies one fixed limit per window to (scope, identity) pairs.
type WindowThrottle struct {
	limiter *FixedWindowLimiter
	limit   int
	window  time.Duration
}

func NewWindowThrottle(l *FixedWindowLimiter, limit int, window time.Duration) *WindowThrottle {
	return &WindowThrottle{limiter: l, limit: limit, window: window}
}

func (t *WindowThrottle) Allow(ctx context.Context, scope, identity string) (bool, error) {
	key := WindowKey(scope, identity, t.window, t.limiter.now())
	d, err := t.limiter.Allow(ctx, key, t.limit, t.window)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}
