package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/phones/:player/layout", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for _, path := range []string{"/phones/p1/layout", "/phones/p2/layout", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/phones/:player/layout", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, int64(1), m.Snapshot().TotalErrors)
}

func TestMiddlewareSkipsWebsocketUpgrades(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/ws/phones/:player", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodGet, "/ws/phones/p1", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 0, testutil.CollectAndCount(m.RequestsTotal))
	assert.Equal(t, int64(0), m.Snapshot().TotalRequests)
}

func TestTimer(t *testing.T) {
	m := NewMetrics()
	timer := NewTimer(m, "file", "load")
	time.Sleep(time.Millisecond)
	timer.Stop("success")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistOps.WithLabelValues("file", "load", "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PersistDuration))
}
