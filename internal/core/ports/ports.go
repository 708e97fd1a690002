package ports

import (
	"context"
	"errors"

	"github.com/sunnahassistant/geocoding-service/internal/core/domain"
)

// ErrCacheMiss is returned by CacheService.Get when the key does not exist,
// so callers can tell an absent record from a store outage.
var ErrCacheMiss = errors.New("cache: key not found")

// Geocoder resolves a free-text address to normalized geocoding results.
// Implementations map their provider-specific response shape into the
// canonical GeocodingResponse; a transport-level failure is an error, a
// provider-level non-OK status is not.
type Geocoder interface {
	Geocode(ctx context.Context, address, language string) (domain.GeocodingResponse, error)
}

// CacheService is a shared key-value store with passive TTL expiry.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// Notifier alerts an operator about service incidents. Delivery is
// best-effort and asynchronous: implementations swallow failures and callers
// must never block on or depend on the outcome.
type Notifier interface {
	Notify(ctx context.Context, message string)
}
