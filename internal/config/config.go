// Package config holds the cc-proxy service configuration.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Sternrassler/cache-control/pkg/logging"
)

// Option store kinds.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config is the complete cc-proxy configuration.
type Config struct {
	Server      ServerConfig  `yaml:"server"`
	Environment string        `yaml:"environment"`
	Options     OptionsConfig `yaml:"options"`
	Logging     LoggingConfig `yaml:"logging"`
	Page        PageConfig    `yaml:"page"`
}

// ServerConfig configures the proxy and admin listeners.
type ServerConfig struct {
	// Port is the public proxy listener.
	Port int `yaml:"port"`

	// AdminPort serves /health, /ready, /metrics and /reload.
	AdminPort int `yaml:"adminPort"`

	// Origin is the base URL of the site behind the proxy.
	Origin string `yaml:"origin"`

	// Timeout bounds a single origin round trip.
	Timeout time.Duration `yaml:"timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// OptionsConfig selects where cache-control options are read from.
type OptionsConfig struct {
	// Store is "file" or "redis".
	Store string `yaml:"store"`

	// Path is the YAML option file used by the file store.
	Path string `yaml:"path"`

	Redis RedisConfig `yaml:"redis"`

	// SnapshotDir holds the last known good options. Empty disables it.
	SnapshotDir string `yaml:"snapshotDir"`

	// ReloadInterval is how often options are re-read. Zero disables polling.
	ReloadInterval time.Duration `yaml:"reloadInterval"`

	Retry RetryConfig `yaml:"retry"`
}

// RedisConfig configures the Redis option store.
type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// RetryConfig configures option load retries.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"maxAttempts"`
	InitialBackoff time.Duration `yaml:"initialBackoff"`
	MaxBackoff     time.Duration `yaml:"maxBackoff"`
	Multiplier     float64       `yaml:"multiplier"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// PageConfig configures how pages are identified from origin responses.
type PageConfig struct {
	// LoggedInCookiePrefixes mark a request as coming from a logged-in user.
	LoggedInCookiePrefixes []string `yaml:"loggedInCookiePrefixes"`

	// PublicPostTypes is reported in diagnostics.
	PublicPostTypes []string `yaml:"publicPostTypes"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.AdminPort <= 0 || c.Server.AdminPort > 65535 {
		return fmt.Errorf("server.adminPort must be between 1 and 65535")
	}
	if c.Server.AdminPort == c.Server.Port {
		return fmt.Errorf("server.adminPort must differ from server.port")
	}
	if c.Server.Origin == "" {
		return fmt.Errorf("server.origin is required")
	}
	u, err := url.Parse(c.Server.Origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.origin must be an absolute http(s) URL, got %q", c.Server.Origin)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}

	switch c.Options.Store {
	case StoreFile:
		if c.Options.Path == "" {
			return fmt.Errorf("options.path is required for the file store")
		}
	case StoreRedis:
		if c.Options.Redis.Address == "" {
			return fmt.Errorf("options.redis.address is required for the redis store")
		}
		if c.Options.Redis.DB < 0 {
			return fmt.Errorf("options.redis.db must not be negative")
		}
	default:
		return fmt.Errorf("options.store must be %q or %q, got %q", StoreFile, StoreRedis, c.Options.Store)
	}
	if c.Options.ReloadInterval < 0 {
		return fmt.Errorf("options.reloadInterval must not be negative")
	}
	if c.Options.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("options.retry.maxAttempts must be positive")
	}
	if c.Options.Retry.Multiplier < 1 {
		return fmt.Errorf("options.retry.multiplier must be at least 1")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}
