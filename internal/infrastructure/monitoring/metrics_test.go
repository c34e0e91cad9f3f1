package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", "200", time.Millisecond, 0, 0)
		m.RecordMutation("createFolder", "applied")
		m.RecordPersist("file", "save", "success", time.Millisecond)
		m.RecordPersistDropped("file")
		m.RecordBridgeCall("updateDockOrder", "success", time.Millisecond)
		m.RecordBridgeEvent("loadData")
		m.RecordWSMessage("out", "layout")
		m.SetPhonesActive(3)
		m.SetCatalogApps(3)
		m.IncWSConnections()
		m.DecWSConnections()
	})
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestRecordMutation(t *testing.T) {
	m := NewMetrics()
	m.RecordMutation("createFolder", "applied")
	m.RecordMutation("createFolder", "applied")
	m.RecordMutation("moveToContainer", "noop")
	m.RecordMutation("reorder", "invalid")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("createFolder", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("moveToContainer", "noop")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Mutations)
	assert.Equal(t, int64(1), snap.NoOps)
}

func TestSnapshotTotals(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest("GET", "/a", "200", 100*time.Millisecond, 10, 20)
	m.RecordHTTPRequest("POST", "/b", "400", 300*time.Millisecond, 10, 20)
	m.RecordPersist("sqlite", "save", "error", time.Millisecond)
	m.RecordPersist("sqlite", "save", "success", time.Millisecond)
	m.RecordBridgeCall("updateDockOrder", "open", 0)
	m.RecordBridgeCall("updateDockOrder", "disabled", 0)
	m.SetPhonesActive(4)
	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
	assert.InDelta(t, 0.2, snap.AvgRequestSeconds, 1e-9)
	assert.Equal(t, int64(1), snap.PersistFailures)
	assert.Equal(t, int64(1), snap.BridgeFailures)
	assert.Equal(t, int64(4), snap.ActivePhones)
	assert.Equal(t, int64(1), snap.ActiveConnections)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSConnections))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordPersistDropped("file")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `phoneshell_persist_dropped_total{backend="file"} 1`)
	assert.Contains(t, rec.Body.String(), "phoneshell_uptime_seconds")
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.RecordBridgeEvent("setVisible")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.BridgeEvents.WithLabelValues("setVisible")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.BridgeEvents.WithLabelValues("setVisible")))
}
