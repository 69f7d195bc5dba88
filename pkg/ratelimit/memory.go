package ratelimit

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// MemoryLimiter keeps one token bucket per key in process memory.
// Buckets of idle clients expire after idleTTL.
type MemoryLimiter struct {
	limit rate.Limit
	burst int
	cache *cache.Cache
}

func NewMemoryLimiter(rps float64, burst int, idleTTL time.Duration) *MemoryLimiter {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	if burst < 1 {
		burst = 1
	}

	return &MemoryLimiter{
		limit: rate.Limit(rps),
		burst: burst,
		cache: cache.New(idleTTL, 2*idleTTL),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.bucket(key).Allow(), nil
}

func (l *MemoryLimiter) bucket(key string) *rate.Limiter {
	if v, found := l.cache.Get(key); found {
		lim := v.(*rate.Limiter)
		// slide the idle expiry
		l.cache.SetDefault(key, lim)
		return lim
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.cache.Add(key, lim, cache.DefaultExpiration); err != nil {
		// lost the race, use the stored bucket
		if v, found := l.cache.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Len returns the number of tracked clients
func (l *MemoryLimiter) Len() int {
	return l.cache.ItemCount()
}
