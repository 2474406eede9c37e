package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.DetectionEvent("raspberry-pi")
	m.DetectionEvent("raspberry-pi")
	m.RemoteCall("start", "ok")
	m.AlertCreated("warning")
	m.SensorSample()
	m.SetDetectionActive(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.detectionEvents.WithLabelValues("raspberry-pi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteCalls.WithLabelValues("start", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alertsCreated.WithLabelValues("warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sensorSamples))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.detectionActive))

	m.SetDetectionActive(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.detectionActive))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.DetectionEvent("x")
		m.RemoteCall("start", "error")
		m.ObserveHTTP("GET", "/api/health", 200, 0.01)
		m.SetDetectionActive(true)
		m.IngestorDropped()
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesSeries(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "/api/alerts", 200, 0.002)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `babymonitor_http_requests_total{method="GET",route="/api/alerts",status="200"} 1`)
}
