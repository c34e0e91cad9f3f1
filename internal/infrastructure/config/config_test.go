package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Empty(t, cfg.Bridge.URL)
	assert.Equal(t, "phone", cfg.Bridge.Resource)
	assert.Equal(t, 5*time.Second, cfg.Bridge.Timeout)

	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.True(t, cfg.Storage.MirrorBridge)

	assert.Equal(t, 10, cfg.Layout.MaxDockApps)
	assert.Equal(t, 700*time.Millisecond, cfg.Layout.LongPress)
	assert.Equal(t, "Folder", cfg.Layout.DefaultFolderName)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.RateLimit.RequestsPerSecond)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                  "9000",
		"HOST":                  "127.0.0.1",
		"BRIDGE_URL":            "http://game.local",
		"BRIDGE_RESOURCE":       "lb-phone",
		"BRIDGE_TIMEOUT":        "2s",
		"BRIDGE_RETRIES":        "0",
		"BRIDGE_RPS":            "7.5",
		"STORAGE_BACKEND":       "sqlite",
		"STORAGE_PATH":          "/var/lib/phoneshell",
		"STORAGE_QUEUE":         "16",
		"STORAGE_MIRROR_BRIDGE": "false",
		"MAX_DOCK_APPS":         "4",
		"LONG_PRESS":            "500ms",
		"CATALOG_DIR":           "/etc/phoneshell/catalog",
		"DEFAULT_FOLDER_NAME":   "Dossier",
		"PHONE_IDLE_TTL":        "10m",
		"LOG_LEVEL":             "debug",
		"LOG_DEV":               "true",
		"RATE_LIMIT_RPS":        "500",
		"RATE_LIMIT_BURST":      "1000",
		"RATE_LIMIT_ENABLED":    "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ServerConfig{Port: "9000", Host: "127.0.0.1"}, cfg.Server)
	assert.Equal(t, BridgeConfig{
		URL:      "http://game.local",
		Resource: "lb-phone",
		Timeout:  2 * time.Second,
		Retries:  0,
		RPS:      7.5,
	}, cfg.Bridge)
	assert.Equal(t, StorageConfig{
		Backend: BackendSQLite,
		Path:    "/var/lib/phoneshell",
		Queue:   16,
	}, cfg.Storage)
	assert.Equal(t, LayoutConfig{
		MaxDockApps:       4,
		LongPress:         500 * time.Millisecond,
		CatalogDir:        "/etc/phoneshell/catalog",
		DefaultFolderName: "Dossier",
		IdleTTL:           10 * time.Minute,
	}, cfg.Layout)
	assert.Equal(t, LogConfig{Level: "debug", Development: true}, cfg.Logging)
	assert.Equal(t, RateLimitConfig{RequestsPerSecond: 500, Burst: 1000}, cfg.RateLimit)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown backend", key: "STORAGE_BACKEND", value: "redis"},
		{name: "zero dock", key: "MAX_DOCK_APPS", value: "0"},
		{name: "negative long press", key: "LONG_PRESS", value: "-1s"},
		{name: "unparsable duration", key: "BRIDGE_TIMEOUT", value: "soon"},
		{name: "unparsable bool", key: "STORAGE_MIRROR_BRIDGE", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)

			// LoadOrDefault falls back instead of failing
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}
