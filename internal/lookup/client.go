package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// DefaultBaseURL is the ipinfo.io endpoint root
const DefaultBaseURL = "https://ipinfo.io"

// ErrLookupFailed is the single failure signal of a lookup.
// Non-200 answers, transport errors and unreadable bodies all wrap it.
var ErrLookupFailed = errors.New("failed to fetch IP details")

// Client looks up geolocation data for an IP address
// Allows swapping the HTTP implementation for a mock in tests
type Client interface {
	Lookup(ctx context.Context, ip string) (*models.LookupResult, error)
}

// Config holds the lookup client settings
type Config struct {
	BaseURL string // defaults to DefaultBaseURL
	Token   string // optional ipinfo.io access token

	// HTTPClient overrides the transport; nil means http.DefaultClient
	// semantics (no timeout beyond the transport defaults)
	HTTPClient *http.Client
}

// HTTPClient queries the geolocation API over HTTPS
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a lookup client from the given configuration
func NewHTTPClient(cfg Config) *HTTPClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		token:      cfg.Token,
		httpClient: httpClient,
	}
}

// Lookup performs one GET {base}/{ip}/json and normalizes the answer.
// The caller is expected to pass a trimmed, non-empty address.
//
// Every call is an independent round trip: no retries, no caching.
func (c *HTTPClient) Lookup(ctx context.Context, ip string) (*models.LookupResult, error) {
	endpoint := fmt.Sprintf("%s/%s/json", c.baseURL, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		query := req.URL.Query()
		query.Set("token", c.token)
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrLookupFailed, resp.StatusCode)
	}

	// Decoding into a map rejects arrays, strings and numbers outright;
	// a literal null leaves the map nil
	dec := json.NewDecoder(resp.Body)
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed response body: %v", ErrLookupFailed, err)
	}
	// The body must hold exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after response body", ErrLookupFailed)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: empty response body", ErrLookupFailed)
	}

	result := Normalize(payload)
	return &result, nil
}
