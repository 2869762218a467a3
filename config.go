// Package gnewsmcp exposes the GNews search and top-headlines endpoints as
// MCP tools, with input validation and a two-tier response cache in front
// of the upstream API.
package gnewsmcp

import (
	"fmt"
	"time"
)

// Config holds the server configuration. Values are loaded from an optional
// JSON/YAML file via [LoadConfig] and overridden from the environment via
// [ApplyEnv].
type Config struct {
	// APIKey authenticates against the GNews API. Required.
	APIKey string `json:"api_key" yaml:"api_key"`
	// BaseURL overrides the GNews API root, mainly for tests.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Host and Port bind the HTTP transport. Ignored for stdio.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// CacheDir enables the SQLite persistent cache tier when set.
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
	// CacheDSN enables a Postgres persistent cache tier instead of SQLite.
	// Takes precedence over CacheDir when both are set.
	CacheDSN string `json:"cache_dsn,omitempty" yaml:"cache_dsn,omitempty"`

	// SearchTTLSeconds and HeadlinesTTLSeconds bound cache entry freshness
	// per tool.
	SearchTTLSeconds    int `json:"search_ttl,omitempty" yaml:"search_ttl,omitempty"`
	HeadlinesTTLSeconds int `json:"headlines_ttl,omitempty" yaml:"headlines_ttl,omitempty"`

	// SearchCacheSize and HeadlinesCacheSize bound the in-memory tiers.
	SearchCacheSize    int `json:"search_cache_size,omitempty" yaml:"search_cache_size,omitempty"`
	HeadlinesCacheSize int `json:"headlines_cache_size,omitempty" yaml:"headlines_cache_size,omitempty"`

	// CORSOrigins restricts the HTTP transport's CORS policy. Empty allows
	// any origin.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`

	// LogLevel is one of debug/info/warn/error. LogFormat is "json"
	// (default) or "text".
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		Host:                "localhost",
		Port:                10000,
		SearchTTLSeconds:    600,
		HeadlinesTTLSeconds: 300,
		SearchCacheSize:     256,
		HeadlinesCacheSize:  64,
	}
}

// SearchTTL returns the search cache TTL as a duration.
func (c Config) SearchTTL() time.Duration {
	return time.Duration(c.SearchTTLSeconds) * time.Second
}

// HeadlinesTTL returns the headlines cache TTL as a duration.
func (c Config) HeadlinesTTL() time.Duration {
	return time.Duration(c.HeadlinesTTLSeconds) * time.Second
}

// Addr returns the host:port bind address for the HTTP transport.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PersistentTierEnabled reports whether any persistent cache backend is
// configured.
func (c Config) PersistentTierEnabled() bool {
	return c.CacheDSN != "" || c.CacheDir != ""
}

// ValidateConfig validates a Config for correctness. A missing API key is a
// startup-time fatal condition, not a per-call error.
func ValidateConfig(cfg Config) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("api_key is required: set GNEWS_API_KEY or api_key in the config file (obtain one from https://gnews.io/)")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.SearchTTLSeconds <= 0 || cfg.HeadlinesTTLSeconds <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if cfg.SearchCacheSize <= 0 || cfg.HeadlinesCacheSize <= 0 {
		return fmt.Errorf("cache sizes must be positive")
	}
	return nil
}
