package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/setlist/config.yaml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "SETLIST_CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL:       "https://api.spotify.com/v1",
			TokenURL:      "https://accounts.spotify.com/api/token",
			Market:        "US",
			Concurrency:   8,
			QueueCapacity: 64,
		},
		Tags: TagsConfig{
			BaseURL:       "https://ws.audioscrobbler.com/2.0/",
			Concurrency:   4,
			QueueCapacity: 64,
		},
		Cache: CacheConfig{
			MaxSize: 500,
			TTL:     10 * time.Minute,
		},
		Miner: MinerConfig{
			Strict:        false,
			MaxCandidates: 400,
		},
		Scoring: ScoringConfig{
			Jitter: 0.15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from layered sources, ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("SETLIST_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps SETLIST_ variables onto koanf paths. Variables with
// underscores inside a leaf name need an explicit mapping because the
// section separator is also an underscore.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "SETLIST_"))

	explicit := map[string]string{
		"catalog_base_url":       "catalog.base_url",
		"catalog_token_url":      "catalog.token_url",
		"catalog_client_id":      "catalog.client_id",
		"catalog_client_secret":  "catalog.client_secret",
		"catalog_queue_capacity": "catalog.queue_capacity",
		"tags_base_url":          "tags.base_url",
		"tags_api_key":           "tags.api_key",
		"tags_queue_capacity":    "tags.queue_capacity",
		"cache_max_size":         "cache.max_size",
		"miner_max_candidates":   "miner.max_candidates",
	}
	if mapped, ok := explicit[key]; ok {
		return mapped
	}

	// section_leaf -> section.leaf for single-word leaves
	return strings.Replace(key, "_", ".", 1)
}
