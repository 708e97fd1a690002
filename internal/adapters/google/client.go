// Package google implements the primary geocoding provider using the Google
// Geocoding API.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sunnahassistant/geocoding-service/internal/core/domain"
	"github.com/sunnahassistant/geocoding-service/internal/pkg/metrics"
)

// Client implements ports.Geocoder against the Google Geocoding API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Google geocoding client.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
	}
}

// Geocode resolves an address in the requested language. Provider statuses
// pass through untouched; only transport-level failures return an error.
func (c *Client) Geocode(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
	params := url.Values{
		"address":  {address},
		"key":      {c.apiKey},
		"language": {language},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodingResponse{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("google", "transport_error").Inc()
		return domain.GeocodingResponse{}, fmt.Errorf("google geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		metrics.ProviderRequests.WithLabelValues("google", "transport_error").Inc()
		return domain.GeocodingResponse{}, fmt.Errorf("google api error: status %d: %s", resp.StatusCode, body)
	}

	var raw response
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		metrics.ProviderRequests.WithLabelValues("google", "decode_error").Inc()
		return domain.GeocodingResponse{}, fmt.Errorf("decode response: %w", err)
	}
	metrics.ProviderRequests.WithLabelValues("google", raw.Status).Inc()

	out := domain.GeocodingResponse{
		Results: make([]domain.Result, 0, len(raw.Results)),
		Status:  domain.Status(raw.Status),
	}
	for _, r := range raw.Results {
		out.Results = append(out.Results, domain.Result{
			FormattedAddress: r.FormattedAddress,
			Geometry: domain.Geometry{
				Location: domain.Location{
					Lat: r.Geometry.Location.Lat,
					Lng: r.Geometry.Location.Lng,
				},
			},
		})
	}
	return out, nil
}

// Google API response types.

type response struct {
	Results []result `json:"results"`
	Status  string   `json:"status"`
}

type result struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
