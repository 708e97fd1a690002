// Package openweather implements the fallback geocoding provider using the
// OpenWeather direct-geocoding API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sunnahassistant/geocoding-service/internal/core/domain"
	"github.com/sunnahassistant/geocoding-service/internal/pkg/metrics"
)

// Client implements ports.Geocoder against the OpenWeather direct-geocoding
// API. The result cap is fixed at one: the fallback only ever needs the best
// match.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an OpenWeather geocoding client.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/geo/1.0/direct",
	}
}

// Geocode resolves an address. language selects a localized place name when
// the provider supplies one; otherwise the default name is used. An empty
// answer normalizes to ZERO_RESULTS, an answer to OK with one result.
func (c *Client) Geocode(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
	params := url.Values{
		"q":     {address},
		"appid": {c.apiKey},
		"limit": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodingResponse{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("openweather", "transport_error").Inc()
		return domain.GeocodingResponse{}, fmt.Errorf("openweather geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		metrics.ProviderRequests.WithLabelValues("openweather", "transport_error").Inc()
		return domain.GeocodingResponse{}, fmt.Errorf("openweather api error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		metrics.ProviderRequests.WithLabelValues("openweather", "decode_error").Inc()
		return domain.GeocodingResponse{}, fmt.Errorf("decode response: %w", err)
	}

	if len(places) == 0 {
		metrics.ProviderRequests.WithLabelValues("openweather", string(domain.StatusZeroResults)).Inc()
		return domain.EmptyResponse(domain.StatusZeroResults), nil
	}
	metrics.ProviderRequests.WithLabelValues("openweather", string(domain.StatusOK)).Inc()
	return normalize(places[0], language), nil
}

// normalize maps an OpenWeather place into the canonical schema. The
// formatted address joins name, administrative region and country with ", ",
// omitting absent parts.
func normalize(p place, language string) domain.GeocodingResponse {
	name := p.Name
	if localized, ok := p.LocalNames[language]; ok && localized != "" {
		name = localized
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{name, p.State, p.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return domain.GeocodingResponse{
		Results: []domain.Result{{
			FormattedAddress: strings.Join(parts, ", "),
			Geometry: domain.Geometry{
				Location: domain.Location{Lat: p.Lat, Lng: p.Lon},
			},
		}},
		Status: domain.StatusOK,
	}
}

// OpenWeather API response type.

type place struct {
	Name       string            `json:"name"`
	LocalNames map[string]string `json:"local_names"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Country    string            `json:"country"`
	State      string            `json:"state"`
}
