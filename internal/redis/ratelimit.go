package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig bounds how many messages a user may send per window.
type RateLimitConfig struct {
	MessageLimit  int
	MessageWindow time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MessageLimit:  60,
		MessageWindow: 60 * time.Second,
	}
}

// RateLimiter throttles message sends with a fixed-window counter in Redis.
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// AllowMessage checks if a user can send another message in the current window.
func (r *RateLimiter) AllowMessage(ctx context.Context, userID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:messages", userID)
	return r.checkLimit(ctx, key, r.config.MessageLimit, r.config.MessageWindow)
}

// checkLimit increments and checks the counter atomically via a Lua script.
func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	script := goredis.NewScript(`
		local key = KEYS[1]
		local limit = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])

		local current = redis.call('GET', key)
		if current == false then
			current = 0
		else
			current = tonumber(current)
		end

		local ttl = redis.call('TTL', key)
		if ttl < 0 then
			ttl = window
		end

		if current < limit then
			redis.call('INCR', key)
			if ttl == window then
				redis.call('EXPIRE', key, window)
			end
			return {1, limit - current - 1, ttl}
		else
			return {0, 0, ttl}
		end
	`)

	result, err := script.Run(ctx, r.client, []string{key}, limit, int(window.Seconds())).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	ttl, _ := values[2].(int64)

	return &RateLimitResult{
		Allowed:   allowed == 1,
		Remaining: int(remaining),
		ResetIn:   time.Duration(ttl) * time.Second,
		Limit:     limit,
	}, nil
}
