// Package metrics provides Prometheus instrumentation for HTTP traffic and
// Chrome Logger header delivery.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

// Header delivery results.
const (
	ResultSent      = "sent"
	ResultSkipped   = "skipped"
	ResultTruncated = "truncated"
)

// Collector holds the collectors of one process on a private registry.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	// Console metrics
	consoleRows        *prometheus.CounterVec
	consoleDropped     prometheus.Counter
	consoleHeaders     *prometheus.CounterVec
	consoleHeaderBytes prometheus.Histogram
}

// NewCollector creates a collector. An empty namespace defaults to "chromelogger".
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "chromelogger"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	c.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"service", "method", "path", "status"},
	)

	c.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"service", "method", "path"},
	)

	c.consoleRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "console",
			Name:      "rows_total",
			Help:      "Total number of console rows recorded, by row type.",
		},
		[]string{"kind"},
	)

	c.consoleDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "console",
			Name:      "rows_dropped_total",
			Help:      "Total number of console rows emitted after the response was committed.",
		},
	)

	c.consoleHeaders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "console",
			Name:      "headers_total",
			Help:      "Total number of X-ChromeLogger-Data headers by result (sent, skipped, truncated).",
		},
		[]string{"result"},
	)

	c.consoleHeaderBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "console",
			Name:      "header_bytes",
			Help:      "Size of encoded X-ChromeLogger-Data headers.",
			Buckets:   prometheus.ExponentialBuckets(256, 2, 10), // 256B to ~128KB
		},
	)

	c.registry.MustRegister(
		c.httpInFlight,
		c.httpRequests,
		c.httpDuration,
		c.consoleRows,
		c.consoleDropped,
		c.consoleHeaders,
		c.consoleHeaderBytes,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler exposing the registered metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// IncrementInFlight increments the in-flight request gauge.
func (c *Collector) IncrementInFlight() {
	c.httpInFlight.Inc()
}

// DecrementInFlight decrements the in-flight request gauge.
func (c *Collector) DecrementInFlight() {
	c.httpInFlight.Dec()
}

// RecordHTTPRequest records a completed request.
func (c *Collector) RecordHTTPRequest(service, method, path, status string, duration time.Duration) {
	if service == "" {
		service = "unknown"
	}
	method = strings.ToUpper(method)
	c.httpRequests.WithLabelValues(service, method, path, status).Inc()
	c.httpDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// RecordConsole records the outcome of one request's console.
func (c *Collector) RecordConsole(stats chromelogger.Stats, sent bool) {
	for kind, n := range stats.Kinds {
		c.consoleRows.WithLabelValues(kind.String()).Add(float64(n))
	}
	if stats.Dropped > 0 {
		c.consoleDropped.Add(float64(stats.Dropped))
	}
	if !sent {
		c.consoleHeaders.WithLabelValues(ResultSkipped).Inc()
		return
	}
	c.consoleHeaders.WithLabelValues(ResultSent).Inc()
	if stats.Truncated {
		c.consoleHeaders.WithLabelValues(ResultTruncated).Inc()
	}
	c.consoleHeaderBytes.Observe(float64(stats.HeaderBytes))
}

// StatusLabel formats an HTTP status code as a label value.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
