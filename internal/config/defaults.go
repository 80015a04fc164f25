package config

import (
	"time"

	"github.com/Sternrassler/cache-control/pkg/options"
	"github.com/Sternrassler/cache-control/pkg/page"
)

// DefaultConfig returns a configuration with sensible defaults.
// Server.Origin has no default and must be set.
func DefaultConfig() *Config {
	retry := options.DefaultRetryConfig()

	return &Config{
		Server: ServerConfig{
			Port:            8080,
			AdminPort:       9090,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Environment: "production",
		Options: OptionsConfig{
			Store: StoreFile,
			Path:  "cache-control.yaml",
			Redis: RedisConfig{
				Address:   "localhost:6379",
				KeyPrefix: options.DefaultKeyPrefix,
			},
			ReloadInterval: time.Minute,
			Retry: RetryConfig{
				MaxAttempts:    retry.MaxAttempts,
				InitialBackoff: retry.InitialBackoff,
				MaxBackoff:     retry.MaxBackoff,
				Multiplier:     retry.BackoffMultiplier,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Page: PageConfig{
			LoggedInCookiePrefixes: append([]string(nil), page.DefaultLoggedInCookiePrefixes...),
		},
	}
}

// HolderRetry converts the retry section for the option holder.
func (c OptionsConfig) HolderRetry() options.RetryConfig {
	return options.RetryConfig{
		MaxAttempts:       c.Retry.MaxAttempts,
		InitialBackoff:    c.Retry.InitialBackoff,
		MaxBackoff:        c.Retry.MaxBackoff,
		BackoffMultiplier: c.Retry.Multiplier,
	}
}
