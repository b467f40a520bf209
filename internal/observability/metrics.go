package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the API surface and the
// transmission pipeline.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	transmissionsSentTotal   *prometheus.CounterVec
	transmissionsFailedTotal *prometheus.CounterVec
	transmissionDuration     *prometheus.HistogramVec
	transmissionsInflight    *prometheus.GaugeVec
	endpointProbesTotal      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pharmaml_gateway",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pharmaml_gateway",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		transmissionsSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pharmaml_gateway",
				Name:      "transmissions_sent_total",
				Help:      "Total number of order transmissions acknowledged by the supplier.",
			},
			[]string{"country"},
		),
		transmissionsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pharmaml_gateway",
				Name:      "transmissions_failed_total",
				Help:      "Total number of order transmissions that ended in error or timeout.",
			},
			[]string{"country", "reason"},
		),
		transmissionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pharmaml_gateway",
				Name:      "transmission_duration_seconds",
				Help:      "Supplier round-trip duration in seconds grouped by country.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"country"},
		),
		transmissionsInflight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "pharmaml_gateway",
				Name:      "transmissions_inflight",
				Help:      "Current number of in-flight order transmissions grouped by country.",
			},
			[]string{"country"},
		),
		endpointProbesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pharmaml_gateway",
				Name:      "endpoint_probes_total",
				Help:      "Total number of configuration-time endpoint probes by result.",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.transmissionsSentTotal,
		m.transmissionsFailedTotal,
		m.transmissionDuration,
		m.transmissionsInflight,
		m.endpointProbesTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncTransmissionSent(country string) {
	if m == nil {
		return
	}
	m.transmissionsSentTotal.WithLabelValues(normalizeCountry(country)).Inc()
}

func (m *Metrics) IncTransmissionFailed(country string, reason string) {
	if m == nil {
		return
	}
	reasonLabel := strings.TrimSpace(strings.ToLower(reason))
	if reasonLabel == "" {
		reasonLabel = "unknown"
	}
	m.transmissionsFailedTotal.WithLabelValues(normalizeCountry(country), reasonLabel).Inc()
}

func (m *Metrics) ObserveTransmissionDuration(country string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.transmissionDuration.WithLabelValues(normalizeCountry(country)).Observe(seconds)
}

func (m *Metrics) IncTransmissionInFlight(country string) {
	if m == nil {
		return
	}
	m.transmissionsInflight.WithLabelValues(normalizeCountry(country)).Inc()
}

func (m *Metrics) DecTransmissionInFlight(country string) {
	if m == nil {
		return
	}
	m.transmissionsInflight.WithLabelValues(normalizeCountry(country)).Dec()
}

func (m *Metrics) IncEndpointProbe(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.endpointProbesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeCountry(country string) string {
	normalized := strings.ToUpper(strings.TrimSpace(country))
	if normalized == "" {
		return "UNKNOWN"
	}
	return normalized
}
