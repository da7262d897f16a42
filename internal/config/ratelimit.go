package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig describes a sliding-window limiter: at most Limit requests
// per Window for each key built from KeyStrategy.
type RateLimitConfig struct {
    Enabled     bool
    Limit       int
    Window      time.Duration
    KeyStrategy string
    Prefix      string
    Debug       bool
}

// LoadRateLimitConfig builds the global API limiter settings.
func LoadRateLimitConfig() RateLimitConfig {
    return normalizeRateLimit(RateLimitConfig{
        Enabled:     envBool("RATE_LIMIT_ENABLED", true),
        Limit:       envInt("RATE_LIMIT_LIMIT", 120),
        Window:      envDur("RATE_LIMIT_WINDOW", time.Minute),
        KeyStrategy: envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user"),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "rl:api"),
        Debug:       envBool("RATE_LIMIT_DEBUG", false),
    })
}

// LoginRateLimitConfig derives the limiter guarding POST /login.  It is
// always keyed by client IP and cannot be disabled through RATE_LIMIT_ENABLED.
func LoginRateLimitConfig(cfg Config) RateLimitConfig {
    return normalizeRateLimit(RateLimitConfig{
        Enabled:     true,
        Limit:       cfg.LoginLimit,
        Window:      cfg.LoginWindow,
        KeyStrategy: "ip",
        Prefix:      "rl:login",
        Debug:       envBool("RATE_LIMIT_DEBUG", false),
    })
}

func normalizeRateLimit(c RateLimitConfig) RateLimitConfig {
    if c.Limit < 1 { c.Limit = 1 }
    if c.Window <= 0 { c.Window = time.Minute }
    return c
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
