// Package config defines process configuration and the race event configs.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Loaders accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"time"
)

// Storage backends for the save record.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Storage selects the save backend: memory, file or redis.
	Storage string `koanf:"storage"`

	// SavePath is the save file used by the file backend.
	SavePath string `koanf:"save_path"`

	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`
	RedisKey  string `koanf:"redis_key"`

	// TickIntervalMS is the host tick cadence driving Advance.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// BotPoolPath is the shipped bot content; BotPoolOverridePath, when it
	// exists, is preferred over it.
	BotPoolPath         string `koanf:"bot_pool_path"`
	BotPoolOverridePath string `koanf:"bot_pool_override_path"`

	// EventsPath points to the ordered event config list. Empty uses the
	// built-in progression.
	EventsPath string `koanf:"events_path"`

	// NotificationQueueSize bounds the host notification queue.
	NotificationQueueSize int `koanf:"notification_queue_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// Timezone is the IANA name of the player's local clock.
	Timezone string `koanf:"timezone"`

	InitialLevel int  `koanf:"initial_level"`
	InTutorial   bool `koanf:"in_tutorial"`

	// DebugRoutes exposes the /debug endpoints.
	DebugRoutes bool `koanf:"debug_routes"`
}

// New creates a Config with defaults. The context is reserved for loaders.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		Storage:               StorageFile,
		SavePath:              "data/save.json",
		RedisAddr:             "localhost:6379",
		RedisKey:              "ghostrace:save",
		TickIntervalMS:        1000,
		BotPoolPath:           "content/bots.yaml",
		BotPoolOverridePath:   "data/bots.override.yaml",
		NotificationQueueSize: 256,
		MaxLeaderboardLimit:   50,
		Timezone:              "Local",
		InitialLevel:          1,
	}
}

// TickInterval returns the tick cadence.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the process configuration.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Storage != StorageMemory && c.Storage != StorageFile && c.Storage != StorageRedis:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	case c.Storage == StorageFile && c.SavePath == "":
		return fmt.Errorf("%w: save_path must not be empty", ErrInvalidConfig)
	case c.Storage == StorageRedis && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr must not be empty", ErrInvalidConfig)
	case c.TickIntervalMS <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	case c.NotificationQueueSize <= 0:
		return fmt.Errorf("%w: notification_queue_size must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
