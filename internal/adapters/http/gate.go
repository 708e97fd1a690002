package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"

	"github.com/sunnahassistant/geocoding-service/internal/core/ports"
	"github.com/sunnahassistant/geocoding-service/internal/pkg/config"
	"github.com/sunnahassistant/geocoding-service/internal/pkg/metrics"
)

const (
	appVersionHeader   = "App-Version"
	rateLimitKeyPrefix = "rate-limit:"
)

// originHeaders is the priority-ordered list of headers used to fingerprint
// the client origin; the raw connection address is the final fallback.
var originHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// rateLimitRecord is the counter persisted per client fingerprint. Timestamp
// marks the start of the window and never changes while the window is open.
type rateLimitRecord struct {
	Count     int   `json:"count"`
	Timestamp int64 `json:"timestamp"`
}

// decision is the outcome of evaluating one request against the gate. A
// storage fault produces an allowing decision (fail open): availability wins
// over strict throttling.
type decision struct {
	allow      bool
	status     int
	retryAfter int    // seconds until the window resets, 429 only
	reason     string // rejection reason, used as a metrics label
}

// AccessGate authenticates the client signature, enforces version freshness
// and throttles request volume per origin with a fixed-window counter kept
// in a shared key-value store.
type AccessGate struct {
	userAgent     *regexp.Regexp
	minVersion    string
	limit         int
	window        int // seconds
	store         ports.CacheService
	notifier      ports.Notifier
	notifyOnLimit bool
	clock         clockwork.Clock
}

// NewAccessGate compiles the expected user-agent pattern (anchored at both
// ends, like the client signature contract requires) and wires the counter
// store. notifier may be nil.
func NewAccessGate(cfg config.GateConfig, store ports.CacheService, notifier ports.Notifier, notifyOnLimit bool, clock clockwork.Clock) (*AccessGate, error) {
	re, err := regexp.Compile("^" + cfg.ExpectedUserAgent + "$")
	if err != nil {
		return nil, fmt.Errorf("compile user-agent pattern: %w", err)
	}
	return &AccessGate{
		userAgent:     re,
		minVersion:    cfg.MinAppVersion,
		limit:         cfg.RateLimit,
		window:        cfg.WindowSeconds,
		store:         store,
		notifier:      notifier,
		notifyOnLimit: notifyOnLimit,
		clock:         clock,
	}, nil
}

// Middleware guards a route with the gate. Rejections carry no body; a 429
// additionally carries Retry-After in seconds.
func (g *AccessGate) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := g.evaluate(c)
		if d.allow {
			return c.Next()
		}

		metrics.GateRejections.WithLabelValues(d.reason).Inc()
		if d.status == fiber.StatusTooManyRequests {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(d.retryAfter))
			if g.notifyOnLimit && g.notifier != nil {
				g.notifier.Notify(c.UserContext(), fmt.Sprintf("rate limit exceeded for %s", g.fingerprint(c)))
			}
		}
		return c.SendStatus(d.status)
	}
}

// evaluate runs the gate checks in order; the first failure wins and no
// further checks run.
func (g *AccessGate) evaluate(c *fiber.Ctx) decision {
	ua := c.Get(fiber.HeaderUserAgent)
	if ua == "" || !g.userAgent.MatchString(ua) {
		return decision{status: fiber.StatusUnauthorized, reason: "bad_signature"}
	}

	version := c.Get(appVersionHeader)
	if version == "" {
		return decision{status: fiber.StatusUnauthorized, reason: "missing_version"}
	}
	if outdated(version, g.minVersion) {
		return decision{status: fiber.StatusUpgradeRequired, reason: "outdated_version"}
	}

	return g.checkRateLimit(c)
}

// outdated reports whether the supplied client version is strictly below the
// configured minimum. A non-numeric value on either side passes the check.
func outdated(supplied, minimum string) bool {
	v, errV := strconv.Atoi(supplied)
	m, errM := strconv.Atoi(minimum)
	return errV == nil && errM == nil && v < m
}

// checkRateLimit performs one read and at most one write against the counter
// store. A record whose timestamp is older than the window is treated as
// absent even if the store has not evicted it yet.
func (g *AccessGate) checkRateLimit(c *fiber.Ctx) decision {
	if g.store == nil {
		return g.failOpen(errors.New("counter store not configured"))
	}

	ctx := c.UserContext()
	key := rateLimitKeyPrefix + g.fingerprint(c)
	now := g.clock.Now().Unix()

	data, err := g.store.Get(ctx, key)
	if errors.Is(err, ports.ErrCacheMiss) {
		return g.startWindow(ctx, key, now)
	}
	if err != nil {
		return g.failOpen(err)
	}

	var rec rateLimitRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.WarnContext(ctx, "corrupt rate limit record, resetting", "key", key, "error", err)
		return g.startWindow(ctx, key, now)
	}

	if now-rec.Timestamp > int64(g.window) {
		return g.startWindow(ctx, key, now)
	}

	if rec.Count >= g.limit {
		return decision{
			status:     fiber.StatusTooManyRequests,
			retryAfter: g.window - int(now-rec.Timestamp),
			reason:     "rate_limited",
		}
	}

	rec.Count++
	if err := g.writeRecord(ctx, key, rec); err != nil {
		return g.failOpen(err)
	}
	return decision{allow: true}
}

// startWindow opens a fresh window for the fingerprint.
func (g *AccessGate) startWindow(ctx context.Context, key string, now int64) decision {
	if err := g.writeRecord(ctx, key, rateLimitRecord{Count: 1, Timestamp: now}); err != nil {
		return g.failOpen(err)
	}
	return decision{allow: true}
}

// writeRecord persists the record with TTL equal to the window length.
func (g *AccessGate) writeRecord(ctx context.Context, key string, rec rateLimitRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return g.store.Set(ctx, key, data, g.window)
}

// failOpen allows the request when the counter store is unavailable.
func (g *AccessGate) failOpen(err error) decision {
	slog.Warn("rate limit store unavailable, failing open", "error", err)
	metrics.RateLimitStoreErrors.Inc()
	return decision{allow: true}
}

// fingerprint derives the rate-limit key from the origin header chain,
// falling back to the connection address.
func (g *AccessGate) fingerprint(c *fiber.Ctx) string {
	for _, h := range originHeaders {
		if v := c.Get(h); v != "" {
			return v
		}
	}
	return c.IP()
}
