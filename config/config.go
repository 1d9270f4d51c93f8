// Package config loads the storefront configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress      string   `mapstructure:"server_address" validate:"required"`
	Environment        string   `mapstructure:"environment" validate:"oneof=development production test"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// Database
	DatabaseURL string `mapstructure:"database_url" validate:"required"`
	DBDriver    string `mapstructure:"db_driver" validate:"oneof=pgx pq"`

	// Cache. An empty RedisURL selects the in-process store.
	RedisURL        string        `mapstructure:"redis_url" validate:"omitempty,url"`
	CacheDefaultTTL time.Duration `mapstructure:"cache_default_ttl" validate:"gt=0"`
	SearchCacheTTL  time.Duration `mapstructure:"search_cache_ttl" validate:"gt=0"`

	// Logging
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// Admin endpoints are mounted only when a key is set.
	AdminAPIKey string `mapstructure:"admin_api_key" validate:"omitempty,min=16"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSAllowedOrigins = splitOrigins(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_address", ":8080")
	v.SetDefault("environment", EnvDevelopment)
	v.SetDefault("cors_allowed_origins", []string{"*"})
	v.SetDefault("database_url", "")
	v.SetDefault("db_driver", "pgx")
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_default_ttl", 2*time.Hour)
	v.SetDefault("search_cache_ttl", 10*time.Minute)
	v.SetDefault("log_level", "info")
	v.SetDefault("admin_api_key", "")
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
