package http

import (
	natsadapter "github.com/sunnahassistant/geocoding-service/internal/adapters/nats"
	"github.com/sunnahassistant/geocoding-service/internal/adapters/valkey"
	"github.com/sunnahassistant/geocoding-service/internal/core/usecases"
	"github.com/sunnahassistant/geocoding-service/internal/pkg/config"
)

// Dependencies holds everything the HTTP layer needs.
type Dependencies struct {
	Geocoding *usecases.GeocodingService
	Gate      *AccessGate
	Cache     *valkey.Cache
	Notifier  *natsadapter.Notifier
	Resources config.ResourcesConfig
}
