package config

import (
    "strings"
    "time"
)

// CacheConfig configures the Redis response cache in front of the public
// annonce and story reads.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool // only safe methods are honoured
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads the CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    return normalizeCache(CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      safeMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    })
}

// Cacheable reports whether responses to method may be stored.
func (c CacheConfig) Cacheable(method string) bool {
    return c.Methods[strings.ToUpper(method)]
}

func normalizeCache(c CacheConfig) CacheConfig {
    if c.TTL <= 0 {
        c.TTL = 30 * time.Second
    }
    if c.Prefix == "" {
        c.Prefix = "cache"
    }
    if len(c.Methods) == 0 {
        c.Methods = map[string]bool{"GET": true}
    }
    return c
}

// safeMethods keeps GET and HEAD from a comma list; a write must never be
// answered from the cache.
func safeMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range splitList(strings.ToUpper(s)) {
        if p == "GET" || p == "HEAD" {
            m[p] = true
        }
    }
    return m
}
