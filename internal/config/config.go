// Package config loads layered service configuration: built-in defaults,
// an optional YAML file, then SETLIST_-prefixed environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the full service configuration tree.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Catalog CatalogConfig `koanf:"catalog"`
	Tags    TagsConfig    `koanf:"tags"`
	Cache   CacheConfig   `koanf:"cache"`
	Miner   MinerConfig   `koanf:"miner"`
	Scoring ScoringConfig `koanf:"scoring"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// CatalogConfig holds music-catalog upstream settings.
type CatalogConfig struct {
	BaseURL       string `koanf:"base_url"`
	TokenURL      string `koanf:"token_url"`
	ClientID      string `koanf:"client_id"`
	ClientSecret  string `koanf:"client_secret"`
	Market        string `koanf:"market"`
	Concurrency   int    `koanf:"concurrency"`
	QueueCapacity int    `koanf:"queue_capacity"`
}

// TagsConfig holds similarity/tag upstream settings.
type TagsConfig struct {
	BaseURL       string `koanf:"base_url"`
	APIKey        string `koanf:"api_key"`
	Concurrency   int    `koanf:"concurrency"`
	QueueCapacity int    `koanf:"queue_capacity"`
}

// CacheConfig bounds the tag cache.
type CacheConfig struct {
	MaxSize int           `koanf:"max_size"`
	TTL     time.Duration `koanf:"ttl"`
}

// MinerConfig tunes candidate mining.
type MinerConfig struct {
	Strict        bool `koanf:"strict"`
	MaxCandidates int  `koanf:"max_candidates"`
}

// ScoringConfig tunes candidate scoring.
type ScoringConfig struct {
	Jitter float64 `koanf:"jitter"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Catalog.ClientID == "" || c.Catalog.ClientSecret == "" {
		return fmt.Errorf("catalog.client_id and catalog.client_secret are required")
	}
	if c.Tags.APIKey == "" {
		return fmt.Errorf("tags.api_key is required")
	}
	if c.Catalog.Concurrency < 1 {
		return fmt.Errorf("catalog.concurrency must be positive, got %d", c.Catalog.Concurrency)
	}
	if c.Tags.Concurrency < 1 {
		return fmt.Errorf("tags.concurrency must be positive, got %d", c.Tags.Concurrency)
	}
	if c.Cache.MaxSize < 1 {
		return fmt.Errorf("cache.max_size must be positive, got %d", c.Cache.MaxSize)
	}
	if c.Scoring.Jitter < 0 || c.Scoring.Jitter > 0.15 {
		return fmt.Errorf("scoring.jitter must be in [0, 0.15], got %v", c.Scoring.Jitter)
	}
	return nil
}
