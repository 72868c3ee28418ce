// Package metrics exposes Prometheus collectors for the engine, the cache,
// event publishing and the HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spivot"

// Recorder owns its registry so several instances can coexist in tests.
// A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	engineOps      *prometheus.CounterVec
	engineLatency  *prometheus.HistogramVec
	alertsTotal    *prometheus.CounterVec
	cacheRequests  *prometheus.CounterVec
	eventsTotal    *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpInFlight   prometheus.Gauge
	documentsTotal *prometheus.CounterVec
}

// New creates a Recorder with the Go runtime and process collectors attached.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		engineOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_operations_total",
				Help:      "Total number of decision engine invocations",
			},
			[]string{"operation", "outcome"},
		),
		engineLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "engine_operation_duration_seconds",
				Help:      "Duration of decision engine operations in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		),
		alertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_alerts_total",
				Help:      "Agent log entries written, by agent and severity",
			},
			[]string{"agent", "severity"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_requests_total",
				Help:      "Analysis cache lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Agent events published to the message bus",
			},
			[]string{"type", "outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method", "class"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests",
			},
		),
		documentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_processed_total",
				Help:      "Uploaded documents by final status",
			},
			[]string{"status"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.engineOps,
		r.engineLatency,
		r.alertsTotal,
		r.cacheRequests,
		r.eventsTotal,
		r.httpRequests,
		r.httpDuration,
		r.httpInFlight,
		r.documentsTotal,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveEngine records one engine invocation started at start.
func (r *Recorder) ObserveEngine(op string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.engineOps.WithLabelValues(op, outcome(err)).Inc()
	r.engineLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// RecordAlert counts an agent log entry.
func (r *Recorder) RecordAlert(agent, severity string) {
	if r == nil {
		return
	}
	r.alertsTotal.WithLabelValues(agent, severity).Inc()
}

// RecordCache counts a cache lookup.
func (r *Recorder) RecordCache(kind string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheRequests.WithLabelValues(kind, result).Inc()
}

// RecordEvent counts a publish attempt.
func (r *Recorder) RecordEvent(eventType string, err error) {
	if r == nil {
		return
	}
	r.eventsTotal.WithLabelValues(eventType, outcome(err)).Inc()
}

// RecordDocument counts a processed upload by its final status.
func (r *Recorder) RecordDocument(status string) {
	if r == nil {
		return
	}
	r.documentsTotal.WithLabelValues(status).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
