// File: internal/ratelimit/redis.go
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisRateLimiter is a fixed-window limiter shared by every instance
// pointing at the same Redis.
type RedisRateLimiter struct {
	config *Config
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRateLimiter(addr, password, prefix string, config *Config) (*RedisRateLimiter, error) {
	if config == nil || config.MaxAttempts <= 0 || config.WindowSize <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "kairos:ratelimit"
	}
	return &RedisRateLimiter{
		config: config,
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		prefix: prefix,
		now:    time.Now,
	}, nil
}

// Ping checks connectivity, used at startup.
func (l *RedisRateLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Allow counts the request in the current window. Redis failures are
// returned with a denied result so callers fail closed.
func (l *RedisRateLimiter) Allow(ctx context.Context, identifier string) (*RateLimitInfo, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		identifier = "unknown"
	}

	windowMs := l.config.WindowSize.Milliseconds()
	nowMs := l.now().UTC().UnixMilli()
	slot := nowMs / windowMs
	resetTime := time.UnixMilli((slot + 1) * windowMs)
	key := fmt.Sprintf("%s:%s:%d", l.prefix, identifier, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, l.client, []string{key}, windowMs).Int64()
	if err != nil {
		return &RateLimitInfo{Allowed: false, ResetTime: resetTime}, fmt.Errorf("rate limit check: %w", err)
	}

	info := &RateLimitInfo{
		Allowed:   count <= int64(l.config.MaxAttempts),
		Remaining: max(0, l.config.MaxAttempts-int(count)),
		ResetTime: resetTime,
	}
	if !info.Allowed {
		info.RetryAfter = resetTime.Sub(time.UnixMilli(nowMs))
	}
	return info, nil
}

func (l *RedisRateLimiter) Close() error {
	return l.client.Close()
}
