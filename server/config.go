package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server settings, loadable from YAML.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// APIKeys maps API key -> user ID. When empty, call endpoints are open.
	APIKeys map[string]string
	// Executor settings.
	CallTimeout    time.Duration
	MaxConcurrency int
	// Cache settings advertised to clients and used by the bundled CLI.
	CacheEnabled bool
	CacheMaxSize int
	CacheTTL     time.Duration
}

// fileConfig is the YAML shape. Durations are strings like "30s" because
// yaml.v3 has no native time.Duration support.
type fileConfig struct {
	Addr           string            `yaml:"addr"`
	APIKeys        map[string]string `yaml:"api_keys"`
	CallTimeout    string            `yaml:"call_timeout"`
	MaxConcurrency *int              `yaml:"max_concurrency"`
	CacheEnabled   *bool             `yaml:"cache_enabled"`
	CacheMaxSize   *int              `yaml:"cache_max_size"`
	CacheTTL       string            `yaml:"cache_ttl"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		CallTimeout:    30 * time.Second,
		MaxConcurrency: 10,
		CacheEnabled:   true,
		CacheMaxSize:   100,
		CacheTTL:       5 * time.Minute,
	}
}

// LoadConfig reads a YAML config file, filling unset fields from defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if len(fc.APIKeys) > 0 {
		cfg.APIKeys = fc.APIKeys
	}
	if fc.CallTimeout != "" {
		if cfg.CallTimeout, err = time.ParseDuration(fc.CallTimeout); err != nil {
			return cfg, fmt.Errorf("parsing config %s: call_timeout: %w", path, err)
		}
	}
	if fc.MaxConcurrency != nil {
		cfg.MaxConcurrency = *fc.MaxConcurrency
	}
	if fc.CacheEnabled != nil {
		cfg.CacheEnabled = *fc.CacheEnabled
	}
	if fc.CacheMaxSize != nil {
		cfg.CacheMaxSize = *fc.CacheMaxSize
	}
	if fc.CacheTTL != "" {
		if cfg.CacheTTL, err = time.ParseDuration(fc.CacheTTL); err != nil {
			return cfg, fmt.Errorf("parsing config %s: cache_ttl: %w", path, err)
		}
	}
	return cfg, nil
}
