package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sunnahassistant/geocoding-service/internal/core/domain"
	"github.com/sunnahassistant/geocoding-service/internal/core/ports"
	"github.com/sunnahassistant/geocoding-service/internal/pkg/metrics"
)

// GeocodingService resolves addresses through a primary provider with a
// single-shot fallback, and trims denylisted suffixes from every formatted
// address before it reaches the client.
type GeocodingService struct {
	primary         ports.Geocoder
	fallback        ports.Geocoder
	filter          domain.AddressFilter
	notifier        ports.Notifier
	notifyOnFailure bool
}

// NewGeocodingService creates a new GeocodingService. notifier may be nil;
// it is only consulted when notifyOnFailure is set.
func NewGeocodingService(primary, fallback ports.Geocoder, filter domain.AddressFilter, notifier ports.Notifier, notifyOnFailure bool) *GeocodingService {
	return &GeocodingService{
		primary:         primary,
		fallback:        fallback,
		filter:          filter,
		notifier:        notifier,
		notifyOnFailure: notifyOnFailure,
	}
}

// Resolve geocodes a non-empty address. The primary provider's answer is
// used as-is when its status is authoritative (OK or ZERO_RESULTS); any
// other status, or a primary transport fault, triggers exactly one fallback
// call. Only a fallback fault escalates to the caller, never a raw provider
// status.
func (s *GeocodingService) Resolve(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
	if language == "" {
		language = "en"
	}

	resp, err := s.primary.Geocode(ctx, address, language)
	if err != nil || !resp.Status.Successful() {
		if err != nil {
			slog.WarnContext(ctx, "primary geocoder failed, trying fallback", "error", err)
		} else {
			slog.WarnContext(ctx, "primary geocoder returned non-success status, trying fallback", "status", string(resp.Status))
		}
		metrics.ProviderFallbacks.Inc()

		resp, err = s.fallback.Geocode(ctx, address, language)
		if err != nil {
			s.reportFault(ctx, fmt.Sprintf("geocoding fallback failed: %v", err))
			return domain.GeocodingResponse{}, fmt.Errorf("resolve address: %w", err)
		}
	}

	for i := range resp.Results {
		resp.Results[i].FormattedAddress = s.filter.Trim(resp.Results[i].FormattedAddress)
	}
	if resp.Results == nil {
		resp.Results = []domain.Result{}
	}
	return resp, nil
}

// reportFault logs the fault and, when the policy allows, fires an operator
// alert. The alert is best-effort; resolution does not wait on it.
func (s *GeocodingService) reportFault(ctx context.Context, message string) {
	slog.ErrorContext(ctx, "geocoding fault", "detail", message)
	if s.notifyOnFailure && s.notifier != nil {
		s.notifier.Notify(ctx, message)
	}
}
