package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/sunnahassistant/geocoding-service/internal/pkg/metrics"
)

// SetupRoutes registers all routes. Only /geocoding-data sits behind the
// access gate; every other route passes through unconditionally.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Health & readiness (no gating, fast internal checks)
	app.Get("/health", HealthHandler())
	app.Get("/ready", ReadyHandler(deps))

	// Geocoding resolution — gated, with a per-request timeout
	app.Get("/geocoding-data",
		deps.Gate.Middleware(),
		timeout.NewWithContext(GeocodingHandler(deps), 15*time.Second),
	)

	// Static resource links (ungated)
	app.Get("/resources/links", ResourcesHandler(deps))
}
