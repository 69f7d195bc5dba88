package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// counter is the subset of redis commands the fixed window needs
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter counts requests per key in fixed windows shared by every
// API instance. Redis failures open the breaker and let traffic through.
type RedisLimiter struct {
	client counter
	prefix string
	limit  int64
	window time.Duration
	cb     *gobreaker.CircuitBreaker
	now    func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, prefix string, limit int64, window time.Duration) *RedisLimiter {
	return newRedisLimiter(client, prefix, limit, window)
}

func newRedisLimiter(client counter, prefix string, limit int64, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if limit < 1 {
		limit = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-ratelimit",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		cb:     cb,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	result, err := l.cb.Execute(func() (interface{}, error) {
		count, err := l.client.Incr(ctx, redisKey).Result()
		if err != nil {
			return nil, err
		}
		if count == 1 {
			if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
				return nil, err
			}
		}
		return count, nil
	})
	if err != nil {
		return true, fmt.Errorf("rate limit backend unavailable: %w", err)
	}

	return result.(int64) <= l.limit, nil
}

// State reports the breaker state, for health checks
func (l *RedisLimiter) State() string {
	return l.cb.State().String()
}
