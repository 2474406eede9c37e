package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry rather than the global default one.
// A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	detectionEvents   *prometheus.CounterVec
	remoteCalls       *prometheus.CounterVec
	alertsCreated     *prometheus.CounterVec
	sensorSamples     prometheus.Counter
	detectionActive   prometheus.Gauge
	ingestorDropped   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babymonitor_http_requests_total",
			Help: "HTTP requests processed by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "babymonitor_http_request_duration_seconds",
			Help:    "HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		detectionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babymonitor_detection_events_total",
			Help: "Cry detection events recorded by source.",
		}, []string{"source"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babymonitor_remote_calls_total",
			Help: "Calls to devices by operation and result.",
		}, []string{"operation", "result"}),
		alertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babymonitor_alerts_created_total",
			Help: "Alerts created by type.",
		}, []string{"type"}),
		sensorSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babymonitor_sensor_samples_total",
			Help: "Sensor samples appended to history.",
		}),
		detectionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "babymonitor_detection_active",
			Help: "1 while cry detection is active.",
		}),
		ingestorDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babymonitor_ingestor_dropped_total",
			Help: "MQTT detection events dropped because the queue was full.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.detectionEvents,
		m.remoteCalls,
		m.alertsCreated,
		m.sensorSamples,
		m.detectionActive,
		m.ingestorDropped,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(seconds)
}

func (m *Metrics) DetectionEvent(source string) {
	if m == nil {
		return
	}
	m.detectionEvents.WithLabelValues(source).Inc()
}

func (m *Metrics) RemoteCall(operation, result string) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) AlertCreated(alertType string) {
	if m == nil {
		return
	}
	m.alertsCreated.WithLabelValues(alertType).Inc()
}

func (m *Metrics) SensorSample() {
	if m == nil {
		return
	}
	m.sensorSamples.Inc()
}

func (m *Metrics) SetDetectionActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.detectionActive.Set(1)
	} else {
		m.detectionActive.Set(0)
	}
}

func (m *Metrics) IngestorDropped() {
	if m == nil {
		return
	}
	m.ingestorDropped.Inc()
}
