package domain

import "strings"

// Status is the provider outcome communicated to the client, independent of
// the HTTP status code.
type Status string

const (
	StatusOK             Status = "OK"
	StatusZeroResults    Status = "ZERO_RESULTS"
	StatusInvalidRequest Status = "INVALID_REQUEST"
	StatusError          Status = "AN_ERROR_OCCURRED"
)

// Successful reports whether the provider answered authoritatively. A
// ZERO_RESULTS answer is a valid answer, not a failure.
func (s Status) Successful() bool {
	return s == StatusOK || s == StatusZeroResults
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry wraps a location. The extra level of nesting matches the
// Google-compatible shape the mobile client already parses.
type Geometry struct {
	Location Location `json:"location"`
}

// Result is a single normalized geocoding match.
type Result struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         Geometry `json:"geometry"`
}

// GeocodingResponse is the external contract of the geocoding endpoint.
// Results is empty exactly when Status is ZERO_RESULTS.
type GeocodingResponse struct {
	Results []Result `json:"results"`
	Status  Status   `json:"status"`
}

// EmptyResponse returns a response with the given status and a non-nil,
// empty result slice so it marshals as [] rather than null.
func EmptyResponse(status Status) GeocodingResponse {
	return GeocodingResponse{Results: []Result{}, Status: status}
}

// AddressFilter is a denylist of trailing address components (typically
// country names) that are stripped from formatted addresses. Built once at
// startup from a comma-separated configuration string and immutable after.
type AddressFilter struct {
	suffixes map[string]struct{}
}

// NewAddressFilter parses a comma-separated denylist. Entries are trimmed
// and lowercased; empty entries are discarded.
func NewAddressFilter(csv string) AddressFilter {
	f := AddressFilter{suffixes: make(map[string]struct{})}
	for _, entry := range strings.Split(csv, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			f.suffixes[entry] = struct{}{}
		}
	}
	return f
}

// Len returns the number of configured suffixes.
func (f AddressFilter) Len() int {
	return len(f.suffixes)
}

// Trim removes the last comma-delimited component of addr when it is on the
// denylist; otherwise addr is returned unchanged.
func (f AddressFilter) Trim(addr string) string {
	parts := strings.Split(addr, ", ")
	last := strings.ToLower(parts[len(parts)-1])
	if _, ok := f.suffixes[last]; !ok {
		return addr
	}
	if i := strings.LastIndex(addr, ","); i >= 0 {
		return addr[:i]
	}
	return addr
}
