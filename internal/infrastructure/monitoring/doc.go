/*
Package monitoring provides Prometheus metrics for the phone shell.

# Overview

Every Metrics value owns a private registry, so tests and multiple servers in
one process never collide on metric names. Recording methods accept a nil
receiver and do nothing, which lets components run without metrics.

# Metrics

- HTTP requests (count, latency, sizes) labelled by route template
- Layout operations by operation and result (applied, noop, invalid)
- Layout store loads and saves by backend and status, plus dropped saves
- Outbound bridge calls by event and status, inbound push events by type
- WebSocket connections and messages
- Active phone sessions, catalog size and uptime

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "sqlite", "save")
	// ... write ...
	timer.Stop("success")
*/
package monitoring
