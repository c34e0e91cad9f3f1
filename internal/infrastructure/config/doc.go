// Package config provides 12-factor configuration management for phoneshell.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Bridge: game-client callback URL, resource name, timeout, retries, rate
//   - Storage: layout backend (file, sqlite, memory), path, queue, bridge mirror
//   - Layout: dock capacity, long-press delay, catalog overlays, folder name
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - BRIDGE_URL, BRIDGE_RESOURCE, BRIDGE_TIMEOUT, BRIDGE_RETRIES, BRIDGE_RPS
//   - STORAGE_BACKEND, STORAGE_PATH, STORAGE_QUEUE, STORAGE_MIRROR_BRIDGE
//   - MAX_DOCK_APPS, LONG_PRESS, CATALOG_DIR, DEFAULT_FOLDER_NAME
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
