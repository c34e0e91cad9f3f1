// Package server wires configuration, storage, the bridge, sessions and the
// HTTP/websocket API into one process.
//
// Middleware order: recovery, request id, request log, metrics, CORS, rate limit.
// Responses are gzip compressed except on websocket routes. Idle phones are
// evicted every minute; Shutdown flushes pending layout writes.
package server
