package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Limiter decides whether the client identified by key may proceed.
// When err is non-nil the returned bool is the fail-open decision and
// callers should let the request through.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config selects and tunes a limiter backend
type Config struct {
	Backend string `mapstructure:"backend"`

	// memory backend
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`

	// redis backend
	Limit     int64         `mapstructure:"limit"`
	Window    time.Duration `mapstructure:"window"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// DefaultConfig returns limits suited to keystroke-driven traffic
func DefaultConfig() Config {
	return Config{
		Backend:           BackendMemory,
		RequestsPerSecond: 20,
		Burst:             40,
		IdleTTL:           10 * time.Minute,
		Limit:             600,
		Window:            time.Minute,
		KeyPrefix:         "jobboard:ratelimit",
	}
}

// New builds the limiter named by cfg.Backend. client is only used by the redis backend.
func New(cfg Config, client redis.Cmdable) (Limiter, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryLimiter(cfg.RequestsPerSecond, cfg.Burst, cfg.IdleTTL), nil
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("redis rate limit backend requires a redis client")
		}
		return NewRedisLimiter(client, cfg.KeyPrefix, cfg.Limit, cfg.Window), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}
