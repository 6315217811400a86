package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled. KeyStrategy determines which parts of the request contribute to
// the cache key: route, method_route, method_route_query or route_query.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	Methods      []string      `env:"CACHE_METHODS" envDefault:"GET"`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Caches reports whether responses to method are cached.
func (c CacheConfig) Caches(method string) bool {
	for _, m := range c.Methods {
		if strings.EqualFold(strings.TrimSpace(m), method) {
			return true
		}
	}
	return false
}
