package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/character-gallery/internal/config"
	"github.com/Sternrassler/character-gallery/pkg/client"
	"github.com/Sternrassler/character-gallery/pkg/controller"
	"github.com/Sternrassler/character-gallery/pkg/logging"
	"github.com/redis/go-redis/v9"
)

// Deps holds everything a host shell needs.
type Deps struct {
	Config *config.Config
	Client *client.Client
	Redis  *redis.Client
}

// Close releases the upstream client and the Redis connection.
func (d *Deps) Close() {
	d.Client.Close()
	if d.Redis != nil {
		d.Redis.Close()
	}
}

// loadConfig reads the config file and applies the --log-level flag.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flags.logLevel != "" {
		if _, err := logging.ParseLevel(flags.logLevel); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
		cfg.Log.Level = flags.logLevel
	}
	return cfg, nil
}

// setupLogging configures the global logger. Pretty output is used when
// configured or when out is a terminal.
func setupLogging(cfg *config.Config, out io.Writer) {
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel(),
		Pretty: cfg.Log.Pretty || logging.IsTerminal(out),
		Output: out,
	})
}

// buildDeps connects Redis (when configured) and creates the API client.
// Logging must be set up first so components pick up the global logger.
func buildDeps(ctx context.Context, cfg *config.Config) (*Deps, error) {
	deps := &Deps{Config: cfg}

	if cfg.Cache.RedisURL != "" {
		opts, err := redisOptions(cfg.Cache)
		if err != nil {
			return nil, err
		}
		deps.Redis = redis.NewClient(opts)
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			deps.Redis.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
		}
	}

	clientCfg := client.DefaultConfig(cfg.API.UserAgent)
	clientCfg.Timeout = cfg.API.Timeout
	clientCfg.Redis = deps.Redis

	api, err := client.New(clientCfg)
	if err != nil {
		if deps.Redis != nil {
			deps.Redis.Close()
		}
		return nil, fmt.Errorf("creating api client: %w", err)
	}
	deps.Client = api

	return deps, nil
}

// redisOptions accepts either a redis:// URL or a bare host:port address.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if strings.Contains(cfg.RedisURL, "://") {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		if cfg.DB != 0 {
			opts.DB = cfg.DB
		}
		return opts, nil
	}
	return &redis.Options{
		Addr: cfg.RedisURL,
		DB:   cfg.DB,
	}, nil
}

// controllerConfig maps gallery policy onto the controller.
func controllerConfig(cfg *config.Config) controller.Config {
	out := controller.DefaultConfig()
	out.ResetPageOnSearch = cfg.Gallery.ResetPageOnSearch
	out.MaxConcurrency = cfg.Gallery.MaxConcurrency
	return out
}
