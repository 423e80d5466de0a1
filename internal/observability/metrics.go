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

// Metrics stores Prometheus collectors used by API and dispatch flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDuration        *prometheus.HistogramVec
	notificationsCreatedTotal  *prometheus.CounterVec
	duplicatesSuppressedTotal  *prometheus.CounterVec
	pushOutcomesTotal          *prometheus.CounterVec
	pushSendDuration           *prometheus.HistogramVec
	pushRetriesTotal           prometheus.Counter
	deviceTokensEvictedTotal   prometheus.Counter
	pushAttemptsAbortedTotal   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_service",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notify_service",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		notificationsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_service",
				Name:      "notifications_created_total",
				Help:      "Total number of notification rows created by type.",
			},
			[]string{"type"},
		),
		duplicatesSuppressedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_service",
				Name:      "duplicates_suppressed_total",
				Help:      "Total number of dispatches suppressed as duplicates by reason.",
			},
			[]string{"reason"},
		),
		pushOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_service",
				Name:      "push_outcomes_total",
				Help:      "Total number of per-token push outcomes by class.",
			},
			[]string{"class"},
		),
		pushSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notify_service",
				Name:      "push_send_duration_seconds",
				Help:      "Provider multicast send duration in seconds by provider.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"provider"},
		),
		pushRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notify_service",
				Name:      "push_retries_total",
				Help:      "Total number of in-call push retries for transient token failures.",
			},
		),
		deviceTokensEvictedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notify_service",
				Name:      "device_tokens_evicted_total",
				Help:      "Total number of device tokens evicted after permanent push failures.",
			},
		),
		pushAttemptsAbortedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_service",
				Name:      "push_attempts_aborted_total",
				Help:      "Total number of push calls aborted whole by reason.",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.notificationsCreatedTotal,
		m.duplicatesSuppressedTotal,
		m.pushOutcomesTotal,
		m.pushSendDuration,
		m.pushRetriesTotal,
		m.deviceTokensEvictedTotal,
		m.pushAttemptsAbortedTotal,
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

func (m *Metrics) IncNotificationCreated(notificationType string) {
	if m == nil {
		return
	}
	m.notificationsCreatedTotal.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

func (m *Metrics) IncDuplicateSuppressed(reason string) {
	if m == nil {
		return
	}
	m.duplicatesSuppressedTotal.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) IncPushOutcome(class string) {
	if m == nil {
		return
	}
	m.pushOutcomesTotal.WithLabelValues(normalizeLabel(class)).Inc()
}

func (m *Metrics) ObservePushSendDuration(provider string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.pushSendDuration.WithLabelValues(normalizeLabel(provider)).Observe(seconds)
}

func (m *Metrics) IncPushRetry() {
	if m == nil {
		return
	}
	m.pushRetriesTotal.Inc()
}

func (m *Metrics) IncTokenEvicted() {
	if m == nil {
		return
	}
	m.deviceTokensEvictedTotal.Inc()
}

func (m *Metrics) IncPushAborted(reason string) {
	if m == nil {
		return
	}
	m.pushAttemptsAbortedTotal.WithLabelValues(normalizeLabel(reason)).Inc()
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

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
