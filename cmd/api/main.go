package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"

	"github.com/sunnahassistant/geocoding-service/internal/adapters/google"
	httpadapter "github.com/sunnahassistant/geocoding-service/internal/adapters/http"
	natsadapter "github.com/sunnahassistant/geocoding-service/internal/adapters/nats"
	"github.com/sunnahassistant/geocoding-service/internal/adapters/openweather"
	"github.com/sunnahassistant/geocoding-service/internal/adapters/valkey"
	"github.com/sunnahassistant/geocoding-service/internal/core/domain"
	"github.com/sunnahassistant/geocoding-service/internal/core/ports"
	"github.com/sunnahassistant/geocoding-service/internal/core/usecases"
	"github.com/sunnahassistant/geocoding-service/internal/pkg/config"
	"github.com/sunnahassistant/geocoding-service/internal/pkg/logging"
	"github.com/sunnahassistant/geocoding-service/internal/pkg/telemetry"
)

const providerTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load("geocoding-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Counter store
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, gate will fail open", "error", err)
	} else {
		defer cache.Close()
	}

	// Operator notification channel
	notifier, err := natsadapter.NewNotifier(cfg.NATS.URL, cfg.Telemetry.ServiceName)
	if err != nil {
		slog.Warn("nats unavailable, operator alerts disabled", "error", err)
	} else {
		defer notifier.Close()
	}

	// Providers and resolver
	primary := google.NewClient(cfg.Providers.GoogleAPIKey, providerTimeout)
	fallback := openweather.NewClient(cfg.Providers.OpenWeatherAPIKey, providerTimeout)
	filter := domain.NewAddressFilter(cfg.Geocoding.AddressFilters)

	geocodingSvc := usecases.NewGeocodingService(
		primary, fallback, filter, notifierOrNil(notifier), cfg.Notify.OnProviderFailure,
	)

	// Access gate
	gate, err := httpadapter.NewAccessGate(
		cfg.Gate, cacheOrNil(cache), notifierOrNil(notifier),
		cfg.Notify.OnRateLimit, clockwork.NewRealClock(),
	)
	if err != nil {
		log.Fatalf("access gate: %v", err)
	}

	deps := &httpadapter.Dependencies{
		Geocoding: geocodingSvc,
		Gate:      gate,
		Cache:     cache,
		Notifier:  notifier,
		Resources: cfg.Resources,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // GET-only API, requests are tiny
		AppName:      "Geocoding Service",
	})
	app.Use(recover.New())

	httpadapter.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// cacheOrNil avoids handing a typed nil pointer to an interface field.
func cacheOrNil(c *valkey.Cache) ports.CacheService {
	if c == nil {
		return nil
	}
	return c
}

// notifierOrNil avoids handing a typed nil pointer to an interface field.
func notifierOrNil(n *natsadapter.Notifier) ports.Notifier {
	if n == nil {
		return nil
	}
	return n
}
