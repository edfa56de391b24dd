package lookup

import (
	"context"
	"fmt"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// MockClient is a test double for the Client interface
// It answers from an in-memory table and records every call
type MockClient struct {
	// Results maps IP address -> canned result
	Results map[string]*models.LookupResult

	// Track method calls for verification in tests
	LookupCalls []string

	// Control behavior for error scenarios
	LookupError error
}

// NewMockClient creates a mock client with a couple of well-known IPs
func NewMockClient() *MockClient {
	mvLat, mvLon := 37.4056, -122.0775
	syLat, syLon := -33.8688, 151.2093

	return &MockClient{
		Results: map[string]*models.LookupResult{
			"8.8.8.8": {
				IP:        "8.8.8.8",
				City:      "Mountain View",
				Region:    "California",
				Country:   "US",
				Latitude:  &mvLat,
				Longitude: &mvLon,
				ISP:       "AS15169 Google LLC",
				Timezone:  "America/Los_Angeles",
			},
			"1.1.1.1": {
				IP:        "1.1.1.1",
				City:      "Sydney",
				Region:    "New South Wales",
				Country:   "AU",
				Latitude:  &syLat,
				Longitude: &syLon,
				ISP:       "AS13335 Cloudflare, Inc.",
				Timezone:  "Australia/Sydney",
			},
			// Bogon addresses come back without a location
			"10.0.0.1": {
				IP: "10.0.0.1",
			},
		},
		LookupCalls: []string{},
	}
}

// Lookup implements the Client interface
func (m *MockClient) Lookup(ctx context.Context, ip string) (*models.LookupResult, error) {
	m.LookupCalls = append(m.LookupCalls, ip)

	if m.LookupError != nil {
		return nil, m.LookupError
	}

	result, exists := m.Results[ip]
	if !exists {
		return nil, fmt.Errorf("%w: unexpected status 404", ErrLookupFailed)
	}

	copied := *result
	return &copied, nil
}
