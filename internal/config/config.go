// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP settings
	Port           string
	RateLimitRPS   float64 // requests per second per client, 0 disables limiting
	RateLimitBurst int

	// Feed settings
	SourcesFile       string // YAML category file, empty means built-in sources
	FeedTimeout       time.Duration
	FeedRetryAttempts int
	FeedRetryDelay    time.Duration
	UserAgent         string

	// Cache settings
	CacheTTL     time.Duration
	SingleFlight bool

	// App settings
	Debug     bool
	LogFormat string // text | json
}

const (
	DefaultPort      = "8080"
	DefaultCacheTTL  = 10 * time.Minute
	DefaultUserAgent = "headlines/1.0 (+https://github.com/deusflow/headlines)"
)

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getEnvOrDefault("PORT", DefaultPort),
		RateLimitRPS:      5,
		RateLimitBurst:    10,
		SourcesFile:       os.Getenv("SOURCES_FILE"),
		FeedTimeout:       15 * time.Second,
		FeedRetryAttempts: 1,
		FeedRetryDelay:    500 * time.Millisecond,
		UserAgent:         getEnvOrDefault("USER_AGENT", DefaultUserAgent),
		CacheTTL:          DefaultCacheTTL,
		SingleFlight:      true,
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.CacheTTL, err = getEnvDurationOrDefault("CACHE_TTL", cfg.CacheTTL); err != nil {
		return nil, err
	}
	if cfg.FeedTimeout, err = getEnvDurationOrDefault("FEED_TIMEOUT", cfg.FeedTimeout); err != nil {
		return nil, err
	}
	if cfg.FeedRetryDelay, err = getEnvDurationOrDefault("FEED_RETRY_DELAY", cfg.FeedRetryDelay); err != nil {
		return nil, err
	}
	cfg.FeedRetryAttempts = getEnvIntOrDefault("FEED_RETRY_ATTEMPTS", cfg.FeedRetryAttempts)
	cfg.RateLimitBurst = getEnvIntOrDefault("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = val
	}

	if v := os.Getenv("SINGLE_FLIGHT"); v != "" {
		cfg.SingleFlight = v == "true" || v == "1"
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.FeedTimeout <= 0 {
		return fmt.Errorf("FEED_TIMEOUT must be positive")
	}
	if c.FeedRetryAttempts < 1 {
		return fmt.Errorf("FEED_RETRY_ATTEMPTS must be at least 1")
	}
	if c.FeedRetryDelay < 0 {
		return fmt.Errorf("FEED_RETRY_DELAY must not be negative")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst == 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
