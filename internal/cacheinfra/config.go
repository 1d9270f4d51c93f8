// Package cacheinfra provides the key-value stores behind the catalog cache:
// a redis store for shared deployments and an in-process sturdyc store used
// when no redis is configured.
package cacheinfra

import "time"

// MemoryConfig holds the configuration for the sturdyc-backed store.
type MemoryConfig struct {
	// Capacity defines the maximum number of entries that the cache can store.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	NumShards int

	// MaxTTL is the longest time an entry may live. Per-entry TTLs longer
	// than this are cut short.
	MaxTTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int
}

// DefaultMemoryConfig returns a MemoryConfig sized for a single catalog node.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          64,
		MaxTTL:             2 * time.Hour,
		EvictionPercentage: 10,
	}
}

// CoverTTLs returns a copy of c whose MaxTTL is at least the longest of ttls.
func (c MemoryConfig) CoverTTLs(ttls ...time.Duration) MemoryConfig {
	for _, ttl := range ttls {
		if ttl > c.MaxTTL {
			c.MaxTTL = ttl
		}
	}
	return c
}

// Validate checks if the configuration values are valid.
func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.MaxTTL <= 0 {
		return &ConfigError{Field: "MaxTTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// BreakerConfig configures the circuit breaker guarding the redis store.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that opens the breaker once
	// MinRequests have been observed.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a breaker that opens after most of the recent
// calls failed and probes the backend again after a short pause.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "redis-cache",
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func (c BreakerConfig) Validate() error {
	if c.FailureThreshold <= 0 || c.FailureThreshold > 1 {
		return &ConfigError{Field: "Breaker.FailureThreshold", Message: "must be in (0, 1]"}
	}
	if c.Timeout < 0 || c.Interval < 0 {
		return &ConfigError{Field: "Breaker.Timeout", Message: "must be non-negative"}
	}
	return nil
}

// RedisConfig holds the configuration for the redis store.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string
	// DeleteBatchSize bounds the number of keys sent per DEL command.
	DeleteBatchSize int
	Breaker         BreakerConfig
}

func DefaultRedisConfig(url string) RedisConfig {
	return RedisConfig{
		URL:             url,
		DeleteBatchSize: 500,
		Breaker:         DefaultBreakerConfig(),
	}
}

func (c RedisConfig) Validate() error {
	if c.URL == "" {
		return &ConfigError{Field: "URL", Message: "must not be empty"}
	}
	if c.DeleteBatchSize <= 0 {
		return &ConfigError{Field: "DeleteBatchSize", Message: "must be greater than 0"}
	}
	return c.Breaker.Validate()
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
