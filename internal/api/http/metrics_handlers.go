package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/monitoring"
)

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	Timestamp        time.Time           `json:"timestamp"`
	Totals           monitoring.Snapshot `json:"totals"`
	AverageLatencyMs float64             `json:"averageLatencyMs"`
	ErrorRate        float64             `json:"errorRate"`
	NoOpRate         float64             `json:"noOpRate"`
	PendingWrites    int                 `json:"pendingWrites"`
	BridgeBreaker    string              `json:"bridgeBreaker,omitempty"`
}

// Summary returns running totals as JSON. Prometheus exposition is served
// separately at /metrics.
func (h *Handlers) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.summarize())
}

func (h *Handlers) summarize() MetricsSummary {
	s := h.metrics.Snapshot()
	out := MetricsSummary{
		Timestamp:        time.Now(),
		Totals:           s,
		AverageLatencyMs: s.AvgRequestSeconds * 1000,
	}
	if s.TotalRequests > 0 {
		out.ErrorRate = float64(s.TotalErrors) / float64(s.TotalRequests)
	}
	if gestures := s.Mutations + s.NoOps; gestures > 0 {
		out.NoOpRate = float64(s.NoOps) / float64(gestures)
	}
	if h.storage != nil {
		out.PendingWrites = h.storage.Pending()
	}
	if h.bridge != nil && h.bridge.Breaker() != nil {
		out.BridgeBreaker = h.bridge.Breaker().State().String()
	}
	return out
}
