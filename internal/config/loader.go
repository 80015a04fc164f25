package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file on top of DefaultConfig.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Server.Origin = strings.TrimRight(cfg.Server.Origin, "/")
	return cfg, nil
}

// LoadWithEnv loads configuration from a YAML file, applies CC_* environment
// overrides and validates the result.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CC_PORT"); v != "" {
		cfg.Server.Port = parseInt(v, cfg.Server.Port)
	}
	if v := os.Getenv("CC_ADMIN_PORT"); v != "" {
		cfg.Server.AdminPort = parseInt(v, cfg.Server.AdminPort)
	}
	if v := os.Getenv("CC_ORIGIN"); v != "" {
		cfg.Server.Origin = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("CC_TIMEOUT"); v != "" {
		cfg.Server.Timeout = parseDuration(v, cfg.Server.Timeout)
	}

	// WP_ENVIRONMENT_TYPE is what the site itself reports.
	if v := os.Getenv("WP_ENVIRONMENT_TYPE"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("CC_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}

	if v := os.Getenv("CC_OPTIONS_STORE"); v != "" {
		cfg.Options.Store = strings.ToLower(v)
	}
	if v := os.Getenv("CC_OPTIONS_PATH"); v != "" {
		cfg.Options.Path = v
	}
	if v := os.Getenv("CC_OPTIONS_SNAPSHOT_DIR"); v != "" {
		cfg.Options.SnapshotDir = v
	}
	if v := os.Getenv("CC_OPTIONS_RELOAD_INTERVAL"); v != "" {
		cfg.Options.ReloadInterval = parseDuration(v, cfg.Options.ReloadInterval)
	}
	if v := os.Getenv("CC_REDIS_ADDRESS"); v != "" {
		cfg.Options.Redis.Address = v
	}
	if v := os.Getenv("CC_REDIS_PASSWORD"); v != "" {
		cfg.Options.Redis.Password = v
	}
	if v := os.Getenv("CC_REDIS_DB"); v != "" {
		cfg.Options.Redis.DB = parseInt(v, cfg.Options.Redis.DB)
	}
	if v := os.Getenv("CC_REDIS_KEY_PREFIX"); v != "" {
		cfg.Options.Redis.KeyPrefix = v
	}

	if v := os.Getenv("CC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CC_LOG_PRETTY"); v != "" {
		cfg.Logging.Pretty = parseBool(v)
	}

	if v := os.Getenv("CC_LOGGED_IN_COOKIE_PREFIXES"); v != "" {
		cfg.Page.LoggedInCookiePrefixes = parseList(v)
	}
	if v := os.Getenv("CC_PUBLIC_POST_TYPES"); v != "" {
		cfg.Page.PublicPostTypes = parseList(v)
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func parseInt(s string, defaultVal int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	return v
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
