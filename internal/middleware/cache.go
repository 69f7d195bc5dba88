package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig represents cache control configuration
type CacheConfig struct {
	MaxAge         int
	Private        bool
	NoStore        bool
	MustRevalidate bool
	Vary           []string
}

// DefaultCacheConfig suits static, non-sensitive GET responses
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge: 300,
		Vary:   []string{"Accept", "Origin"},
	}
}

// NoStoreConfig forbids any caching of the response
func NoStoreConfig() CacheConfig {
	return CacheConfig{
		Private: true,
		NoStore: true,
	}
}

func (config CacheConfig) directives() string {
	if config.NoStore {
		return "no-store, max-age=0"
	}

	directives := make([]string, 0, 3)
	if config.Private {
		directives = append(directives, "private")
	} else {
		directives = append(directives, "public")
	}

	if config.MaxAge > 0 {
		directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
	}

	if config.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}

	return strings.Join(directives, ", ")
}

// Cache adds cache control headers to responses
func Cache(config CacheConfig) gin.HandlerFunc {
	value := config.directives()
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		if config.NoStore {
			c.Header("Pragma", "no-cache")
		}

		if len(config.Vary) > 0 {
			c.Header("Vary", strings.Join(config.Vary, ", "))
		}

		c.Next()
	}
}

// NoStore keeps password-bearing responses out of every cache
func NoStore() gin.HandlerFunc {
	return Cache(NoStoreConfig())
}
