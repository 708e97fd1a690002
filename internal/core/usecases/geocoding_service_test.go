package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sunnahassistant/geocoding-service/internal/core/domain"
	"github.com/sunnahassistant/geocoding-service/internal/core/usecases"
)

// ---- Mocks ----

type mockGeocoder struct {
	calls     int
	geocodeFn func(ctx context.Context, address, language string) (domain.GeocodingResponse, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
	m.calls++
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address, language)
	}
	return domain.EmptyResponse(domain.StatusZeroResults), nil
}

type mockNotifier struct {
	messages []string
}

func (m *mockNotifier) Notify(ctx context.Context, message string) {
	m.messages = append(m.messages, message)
}

func okResponse(addr string, lat, lng float64) domain.GeocodingResponse {
	return domain.GeocodingResponse{
		Results: []domain.Result{{
			FormattedAddress: addr,
			Geometry:         domain.Geometry{Location: domain.Location{Lat: lat, Lng: lng}},
		}},
		Status: domain.StatusOK,
	}
}

// ---- Tests ----

func TestResolve_PrimarySuccess_TrimsFilteredSuffix(t *testing.T) {
	primary := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return okResponse("123 Main St, Springfield, USA", 39.8, -89.6), nil
		},
	}
	fallback := &mockGeocoder{}

	svc := usecases.NewGeocodingService(primary, fallback, domain.NewAddressFilter("usa"), nil, false)
	resp, err := svc.Resolve(context.Background(), "123 Main St", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.Results[0].FormattedAddress; got != "123 Main St, Springfield" {
		t.Errorf("expected trimmed address, got %q", got)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback must not run on primary success, ran %d times", fallback.calls)
	}
}

func TestResolve_PrimaryZeroResults_NoFallback(t *testing.T) {
	primary := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return domain.EmptyResponse(domain.StatusZeroResults), nil
		},
	}
	fallback := &mockGeocoder{}

	svc := usecases.NewGeocodingService(primary, fallback, domain.NewAddressFilter(""), nil, false)
	resp, err := svc.Resolve(context.Background(), "nowhere", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != domain.StatusZeroResults {
		t.Errorf("expected ZERO_RESULTS, got %s", resp.Status)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
	if fallback.calls != 0 {
		t.Errorf("ZERO_RESULTS is authoritative, fallback ran %d times", fallback.calls)
	}
}

func TestResolve_PrimaryNonSuccessStatus_FallsBackOnce(t *testing.T) {
	primary := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return domain.GeocodingResponse{Results: []domain.Result{}, Status: "OVER_QUERY_LIMIT"}, nil
		},
	}
	fallback := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return okResponse("Paris, FR", 48.8, 2.3), nil
		},
	}

	svc := usecases.NewGeocodingService(primary, fallback, domain.NewAddressFilter(""), nil, false)
	resp, err := svc.Resolve(context.Background(), "Paris", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.calls != 1 {
		t.Fatalf("expected exactly one fallback call, got %d", fallback.calls)
	}
	if resp.Results[0].FormattedAddress != "Paris, FR" {
		t.Errorf("unexpected address %q", resp.Results[0].FormattedAddress)
	}
}

func TestResolve_PrimaryTransportFault_FallsBackOnce(t *testing.T) {
	primary := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return domain.GeocodingResponse{}, errors.New("connection refused")
		},
	}
	fallback := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return domain.EmptyResponse(domain.StatusZeroResults), nil
		},
	}

	svc := usecases.NewGeocodingService(primary, fallback, domain.NewAddressFilter(""), nil, false)
	resp, err := svc.Resolve(context.Background(), "somewhere", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.calls != 1 {
		t.Fatalf("expected exactly one fallback call, got %d", fallback.calls)
	}
	if resp.Status != domain.StatusZeroResults || len(resp.Results) != 0 {
		t.Errorf("expected empty ZERO_RESULTS response, got %+v", resp)
	}
}

func TestResolve_FallbackFault_ReturnsErrorAndNotifies(t *testing.T) {
	boom := errors.New("openweather api error: status 503")
	primary := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return domain.GeocodingResponse{}, errors.New("timeout")
		},
	}
	fallback := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return domain.GeocodingResponse{}, boom
		},
	}
	notifier := &mockNotifier{}

	svc := usecases.NewGeocodingService(primary, fallback, domain.NewAddressFilter(""), notifier, true)
	_, err := svc.Resolve(context.Background(), "somewhere", "en")
	if !errors.Is(err, boom) {
		t.Fatalf("expected fallback error, got %v", err)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one operator alert, got %d", len(notifier.messages))
	}
}

func TestResolve_FallbackFault_NotifyPolicyOff(t *testing.T) {
	primary := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return domain.GeocodingResponse{}, errors.New("timeout")
		},
	}
	fallback := primary
	notifier := &mockNotifier{}

	svc := usecases.NewGeocodingService(primary, fallback, domain.NewAddressFilter(""), notifier, false)
	if _, err := svc.Resolve(context.Background(), "somewhere", "en"); err == nil {
		t.Fatal("expected error")
	}
	if len(notifier.messages) != 0 {
		t.Errorf("notification policy off, but %d alerts sent", len(notifier.messages))
	}
}

func TestResolve_DefaultsLanguageToEnglish(t *testing.T) {
	var gotLanguage string
	primary := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			gotLanguage = language
			return okResponse("Berlin, Germany", 52.5, 13.4), nil
		},
	}

	svc := usecases.NewGeocodingService(primary, &mockGeocoder{}, domain.NewAddressFilter(""), nil, false)
	if _, err := svc.Resolve(context.Background(), "Berlin", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLanguage != "en" {
		t.Errorf("expected language default en, got %q", gotLanguage)
	}
}

func TestResolve_TrimsEveryResult(t *testing.T) {
	primary := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address, language string) (domain.GeocodingResponse, error) {
			return domain.GeocodingResponse{
				Results: []domain.Result{
					{FormattedAddress: "Springfield, IL, USA"},
					{FormattedAddress: "Springfield, MA, USA"},
					{FormattedAddress: "Springfield, Canada"},
				},
				Status: domain.StatusOK,
			}, nil
		},
	}

	svc := usecases.NewGeocodingService(primary, &mockGeocoder{}, domain.NewAddressFilter("usa"), nil, false)
	resp, err := svc.Resolve(context.Background(), "Springfield", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Springfield, IL", "Springfield, MA", "Springfield, Canada"}
	for i, w := range want {
		if resp.Results[i].FormattedAddress != w {
			t.Errorf("result %d: got %q, want %q", i, resp.Results[i].FormattedAddress, w)
		}
	}
}
