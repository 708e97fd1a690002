package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocoding",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geocoding",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Access gate metrics
	GateRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocoding",
		Subsystem: "gate",
		Name:      "rejections_total",
		Help:      "Requests rejected by the access gate, by reason",
	}, []string{"reason"})

	RateLimitStoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geocoding",
		Subsystem: "gate",
		Name:      "store_errors_total",
		Help:      "Counter store failures that caused the gate to fail open",
	})

	// Provider metrics
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocoding",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Upstream geocoding provider calls, by provider and outcome",
	}, []string{"provider", "status"})

	ProviderFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geocoding",
		Subsystem: "provider",
		Name:      "fallbacks_total",
		Help:      "Resolutions that fell through to the secondary provider",
	})

	// Notification metrics
	OperatorAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geocoding",
		Subsystem: "notify",
		Name:      "operator_alerts_total",
		Help:      "Operator alerts handed to the notification channel",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
