package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sunnahassistant/geocoding-service/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient("test-key", 2*time.Second)
	c.baseURL = server.URL
	return c
}

func TestGeocode_SingleBestMatch(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"q":     r.URL.Query().Get("q"),
			"appid": r.URL.Query().Get("appid"),
			"limit": r.URL.Query().Get("limit"),
		}
		_, _ = w.Write([]byte(`[{
			"name": "London",
			"local_names": {"ar": "لندن"},
			"lat": 51.5073,
			"lon": -0.1276,
			"country": "GB",
			"state": "England"
		}]`))
	})

	resp, err := c.Geocode(context.Background(), "London", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery["q"] != "London" || gotQuery["appid"] != "test-key" || gotQuery["limit"] != "1" {
		t.Errorf("unexpected query params %v", gotQuery)
	}
	if resp.Status != domain.StatusOK {
		t.Errorf("expected OK, got %s", resp.Status)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	r := resp.Results[0]
	if r.FormattedAddress != "London, England, GB" {
		t.Errorf("unexpected address %q", r.FormattedAddress)
	}
	if r.Geometry.Location.Lat != 51.5073 || r.Geometry.Location.Lng != -0.1276 {
		t.Errorf("unexpected location %+v", r.Geometry.Location)
	}
}

func TestGeocode_LocalizedName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"name": "London",
			"local_names": {"ar": "لندن"},
			"lat": 51.5,
			"lon": -0.1,
			"country": "GB",
			"state": "England"
		}]`))
	})

	resp, err := c.Geocode(context.Background(), "London", "ar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.Results[0].FormattedAddress; got != "لندن, England, GB" {
		t.Errorf("expected localized name, got %q", got)
	}
}

func TestGeocode_EmptyAnswerIsZeroResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	resp, err := c.Geocode(context.Background(), "xyzzy", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != domain.StatusZeroResults {
		t.Errorf("expected ZERO_RESULTS, got %s", resp.Status)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("expected empty non-nil results, got %+v", resp.Results)
	}
}

func TestGeocode_TransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	})

	if _, err := c.Geocode(context.Background(), "London", "en"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestNormalize_OmitsAbsentParts(t *testing.T) {
	cases := []struct {
		name string
		in   place
		lang string
		want string
	}{
		{
			name: "no localized name falls back to default",
			in:   place{Name: "Paris", Country: "FR", Lat: 48.8, Lon: 2.3},
			lang: "en",
			want: "Paris, FR",
		},
		{
			name: "no state",
			in:   place{Name: "Mecca", Country: "SA", Lat: 21.4, Lon: 39.8},
			lang: "en",
			want: "Mecca, SA",
		},
		{
			name: "all parts",
			in:   place{Name: "Springfield", State: "Illinois", Country: "US"},
			lang: "en",
			want: "Springfield, Illinois, US",
		},
		{
			name: "empty localized value ignored",
			in:   place{Name: "Rome", LocalNames: map[string]string{"it": ""}, Country: "IT"},
			lang: "it",
			want: "Rome, IT",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := normalize(tc.in, tc.lang)
			if resp.Status != domain.StatusOK {
				t.Errorf("expected OK, got %s", resp.Status)
			}
			if got := resp.Results[0].FormattedAddress; got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
