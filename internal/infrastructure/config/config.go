package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Bridge    BridgeConfig
	Storage   StorageConfig
	Layout    LayoutConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// BridgeConfig holds the game-client bridge connection settings.
type BridgeConfig struct {
	URL      string        `envconfig:"BRIDGE_URL" default:""`
	Resource string        `envconfig:"BRIDGE_RESOURCE" default:"phone"`
	Timeout  time.Duration `envconfig:"BRIDGE_TIMEOUT" default:"5s"`
	Retries  int           `envconfig:"BRIDGE_RETRIES" default:"2"`
	RPS      float64       `envconfig:"BRIDGE_RPS" default:"20"`
}

// StorageConfig holds layout persistence settings.
type StorageConfig struct {
	Backend      string `envconfig:"STORAGE_BACKEND" default:"file"`
	Path         string `envconfig:"STORAGE_PATH" default:"/tmp/phoneshell"`
	Queue        int    `envconfig:"STORAGE_QUEUE" default:"256"`
	MirrorBridge bool   `envconfig:"STORAGE_MIRROR_BRIDGE" default:"true"`
}

// LayoutConfig holds home-screen behaviour settings.
type LayoutConfig struct {
	MaxDockApps       int           `envconfig:"MAX_DOCK_APPS" default:"10"`
	LongPress         time.Duration `envconfig:"LONG_PRESS" default:"700ms"`
	CatalogDir        string        `envconfig:"CATALOG_DIR" default:""`
	DefaultFolderName string        `envconfig:"DEFAULT_FOLDER_NAME" default:"Folder"`
	IdleTTL           time.Duration `envconfig:"PHONE_IDLE_TTL" default:"30m"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Layout.MaxDockApps <= 0 {
		return fmt.Errorf("MAX_DOCK_APPS must be positive, got %d", c.Layout.MaxDockApps)
	}
	if c.Layout.LongPress <= 0 {
		return fmt.Errorf("LONG_PRESS must be positive, got %s", c.Layout.LongPress)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Bridge: BridgeConfig{
			Resource: "phone",
			Timeout:  5 * time.Second,
			Retries:  2,
			RPS:      20,
		},
		Storage: StorageConfig{
			Backend:      BackendFile,
			Path:         "/tmp/phoneshell",
			Queue:        256,
			MirrorBridge: true,
		},
		Layout: LayoutConfig{
			MaxDockApps:       10,
			LongPress:         700 * time.Millisecond,
			DefaultFolderName: "Folder",
			IdleTTL:           30 * time.Minute,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
