// Package main is the entry point for the phoneshell layout service.
//
// phoneshell owns the phone home screen of every player: which apps are
// installed, where they sit in the dock, on the home grid or in folders, and how
// drag and drop gestures rearrange them.
//
// Architecture:
//
//	NUI (phone UI) ⇄ phoneshell ⇄ game-server bridge
//
// The server provides:
//   - REST API for layout reads, mutations and gestures
//   - WebSocket streams pushing phone updates to the NUI
//   - WebSocket and HTTP endpoints for bridge push events
//   - Layout persistence (file, sqlite or memory, mirrored to the bridge)
//   - Prometheus metrics, rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8080 -bridge http://127.0.0.1:30120 -storage sqlite -data /var/lib/phoneshell
//
//	# Development mode (colored logs, debug level, in-memory layouts)
//	./server -dev -storage memory
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, pending layout writes are flushed
package main
