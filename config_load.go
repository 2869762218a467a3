package gnewsmcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads and parses a config file from the given path, layered on
// top of DefaultConfig. Supported formats: JSON (.json), YAML (.yaml, .yml).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	return &cfg, nil
}

// ApplyEnv overrides cfg fields from environment variables. Unset variables
// leave the corresponding field untouched.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("GNEWS_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("GNEWS_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("GNEWS_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("GNEWS_CACHE_DSN"); v != "" {
		cfg.CacheDSN = v
	}
	if v := os.Getenv("GNEWS_SEARCH_TTL"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing GNEWS_SEARCH_TTL: %w", err)
		}
		cfg.SearchTTLSeconds = ttl
	}
	if v := os.Getenv("GNEWS_HEADLINES_TTL"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing GNEWS_HEADLINES_TTL: %w", err)
		}
		cfg.HeadlinesTTLSeconds = ttl
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	return nil
}
