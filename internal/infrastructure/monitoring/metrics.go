package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phoneshell"

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Layout metrics
	Mutations    *prometheus.CounterVec
	PhonesActive prometheus.Gauge
	CatalogApps  prometheus.Gauge

	// Persistence metrics
	PersistOps      *prometheus.CounterVec
	PersistDuration *prometheus.HistogramVec
	PersistDropped  *prometheus.CounterVec

	// Bridge metrics
	BridgeCalls    *prometheus.CounterVec
	BridgeDuration *prometheus.HistogramVec
	BridgeEvents   *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for the JSON summary endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON summary endpoint
type Snapshot struct {
	TotalRequests     int64   `json:"totalRequests"`
	TotalErrors       int64   `json:"totalErrors"`
	Mutations         int64   `json:"mutations"`
	NoOps             int64   `json:"noOps"`
	PersistFailures   int64   `json:"persistFailures"`
	BridgeFailures    int64   `json:"bridgeFailures"`
	ActivePhones      int64   `json:"activePhones"`
	ActiveConnections int64   `json:"activeConnections"`
	AvgRequestSeconds float64 `json:"avgRequestSeconds"`
	UptimeSeconds     float64 `json:"uptimeSeconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "layout_mutations_total",
				Help:      "Layout operations by operation and result (applied, noop, invalid)",
			},
			[]string{"operation", "result"},
		),
		PhonesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "phones_active",
				Help:      "Number of phone sessions held in memory",
			},
		),
		CatalogApps: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_apps",
				Help:      "Number of apps in the catalog",
			},
		),

		PersistOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_operations_total",
				Help:      "Layout store operations by backend, operation and status",
			},
			[]string{"backend", "operation", "status"},
		),
		PersistDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "persist_duration_seconds",
				Help:      "Layout store operation duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"backend", "operation"},
		),
		PersistDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_dropped_total",
				Help:      "Layout saves dropped because the write queue was full or closed",
			},
			[]string{"backend"},
		),

		BridgeCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_calls_total",
				Help:      "Outbound bridge calls by event and status",
			},
			[]string{"event", "status"},
		),
		BridgeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bridge_call_duration_seconds",
				Help:      "Outbound bridge call duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"event"},
		),
		BridgeEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_events_total",
				Help:      "Inbound bridge push events by type",
			},
			[]string{"type"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry all metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordMutation records one layout operation. Result is applied, noop or invalid.
func (m *Metrics) RecordMutation(operation, result string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(operation, result).Inc()

	m.mu.Lock()
	switch result {
	case "applied":
		m.snapshot.Mutations++
	case "noop":
		m.snapshot.NoOps++
	}
	m.mu.Unlock()
}

// RecordPersist records a store load or save
func (m *Metrics) RecordPersist(backend, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PersistOps.WithLabelValues(backend, operation, status).Inc()
	m.PersistDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())

	if status == "error" {
		m.mu.Lock()
		m.snapshot.PersistFailures++
		m.mu.Unlock()
	}
}

// RecordPersistDropped records a save that never reached the store
func (m *Metrics) RecordPersistDropped(backend string) {
	if m == nil {
		return
	}
	m.PersistDropped.WithLabelValues(backend).Inc()
}

// RecordBridgeCall records an outbound bridge call
func (m *Metrics) RecordBridgeCall(event, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.BridgeCalls.WithLabelValues(event, status).Inc()
	m.BridgeDuration.WithLabelValues(event).Observe(duration.Seconds())

	if status != "success" && status != "disabled" {
		m.mu.Lock()
		m.snapshot.BridgeFailures++
		m.mu.Unlock()
	}
}

// RecordBridgeEvent records an inbound push event
func (m *Metrics) RecordBridgeEvent(eventType string) {
	if m == nil {
		return
	}
	m.BridgeEvents.WithLabelValues(eventType).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// SetPhonesActive sets the number of phone sessions in memory
func (m *Metrics) SetPhonesActive(count int) {
	if m == nil {
		return
	}
	m.PhonesActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActivePhones = int64(count)
	m.mu.Unlock()
}

// SetCatalogApps sets the number of apps in the catalog
func (m *Metrics) SetCatalogApps(count int) {
	if m == nil {
		return
	}
	m.CatalogApps.Set(float64(count))
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgRequestSeconds = s.totalDuration / float64(s.TotalRequests)
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
