package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// unmatched labels requests that hit no route, so scanners cannot grow the
// label set with arbitrary paths.
const unmatched = "unmatched"

// Middleware records request count, latency and sizes by route template.
// Websocket upgrades are skipped: they stay open for the life of the stream
// and the ws package counts them itself.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatched
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			max(c.Request.ContentLength, 0),
			int64(max(c.Writer.Size(), 0)),
		)
	}
}

// Timer measures one store operation
type Timer struct {
	metrics   *Metrics
	backend   string
	operation string
	start     time.Time
}

// NewTimer starts timing operation against backend
func NewTimer(metrics *Metrics, backend, operation string) *Timer {
	return &Timer{metrics: metrics, backend: backend, operation: operation, start: time.Now()}
}

// Stop records the elapsed time under status
func (t *Timer) Stop(status string) {
	t.metrics.RecordPersist(t.backend, t.operation, status, time.Since(t.start))
}
