// Package config loads the gallery configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Sternrassler/character-gallery/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvAddr      = "GALLERY_ADDR"
	EnvRedisURL  = "GALLERY_REDIS_URL"
	EnvLogLevel  = "GALLERY_LOG_LEVEL"
	EnvUserAgent = "GALLERY_USER_AGENT"
)

// DefaultUserAgent identifies the gallery to the upstream API.
const DefaultUserAgent = "character-gallery/0.1.0"

// Config is the complete gallery configuration.
type Config struct {
	API     APIConfig     `yaml:"api,omitempty"`
	Cache   CacheConfig   `yaml:"cache,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`
	Gallery GalleryConfig `yaml:"gallery,omitempty"`
}

// APIConfig configures the upstream client.
type APIConfig struct {
	UserAgent string        `yaml:"user_agent,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// CacheConfig configures the Redis revalidation store. An empty RedisURL
// disables it.
type CacheConfig struct {
	RedisURL string `yaml:"redis_url,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// ServerConfig configures the HTTP host shell.
type ServerConfig struct {
	Addr            string        `yaml:"addr,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Pretty bool   `yaml:"pretty,omitempty"`
}

// GalleryConfig holds controller policy.
type GalleryConfig struct {
	// ResetPageOnSearch returns to page 1 when the search text changes.
	ResetPageOnSearch bool `yaml:"reset_page_on_search,omitempty"`
	// MaxConcurrency bounds parallel episode lookups.
	MaxConcurrency int `yaml:"max_concurrency,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			UserAgent: DefaultUserAgent,
			Timeout:   15 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
		Gallery: GalleryConfig{
			MaxConcurrency: 6,
		},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	c.Server.Addr = getEnv(EnvAddr, c.Server.Addr)
	c.Cache.RedisURL = getEnv(EnvRedisURL, c.Cache.RedisURL)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.API.UserAgent = getEnv(EnvUserAgent, c.API.UserAgent)

	if v := os.Getenv("GALLERY_RESET_PAGE_ON_SEARCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GALLERY_RESET_PAGE_ON_SEARCH: %w", err)
		}
		c.Gallery.ResetPageOnSearch = b
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.API.UserAgent == "" {
		return fmt.Errorf("api.user_agent is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0 (got %s)", c.API.Timeout)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Gallery.MaxConcurrency <= 0 {
		return fmt.Errorf("gallery.max_concurrency must be > 0 (got %d)", c.Gallery.MaxConcurrency)
	}
	if c.Cache.DB < 0 {
		return fmt.Errorf("cache.db must be >= 0 (got %d)", c.Cache.DB)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// LogLevel returns the validated log level.
func (c *Config) LogLevel() logging.LogLevel {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
