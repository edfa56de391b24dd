package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evyataryagoni/iptracker/internal/handler"
	"github.com/evyataryagoni/iptracker/internal/limiter"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/lookup"
	"github.com/evyataryagoni/iptracker/internal/mapview"
	"github.com/evyataryagoni/iptracker/internal/metrics"
	"github.com/evyataryagoni/iptracker/internal/service"
	"github.com/evyataryagoni/iptracker/internal/store"
)

func setup(t *testing.T, allow bool) (http.Handler, *limiter.MockLimiter) {
	t.Helper()
	svc := service.NewTrackerService(
		lookup.NewMockClient(),
		store.NewMockStore(),
		&mapview.Writer{Dir: t.TempDir()},
		nil,
		logger.NewNop(),
	)
	lim := limiter.NewMockLimiter(allow)
	return SetupRouter(handler.NewTrackerHandler(svc), lim, metrics.New(), logger.NewNop()), lim
}

// TestSetupRouter_Health tests the health endpoint
func TestSetupRouter_Health(t *testing.T) {
	r, _ := setup(t, true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}
}

// TestSetupRouter_Metrics tests that request metrics are exposed
func TestSetupRouter_Metrics(t *testing.T) {
	r, _ := setup(t, true)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/lookup?ip=8.8.8.8", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `iptracker_http_requests_total{method="GET",route="/v1/lookup",status="200"} 1`) {
		t.Error("expected the lookup request to be counted by route")
	}
}

// TestSetupRouter_RateLimitScope tests that only upstream routes are limited
func TestSetupRouter_RateLimitScope(t *testing.T) {
	r, lim := setup(t, false)

	limited := []struct{ method, target string }{
		{http.MethodGet, "/v1/lookup?ip=8.8.8.8"},
		{http.MethodPost, "/v1/records/capture?ip=8.8.8.8"},
		{http.MethodPost, "/v1/map?ip=8.8.8.8"},
	}
	for _, tc := range limited {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("%s %s: expected 429, got %d", tc.method, tc.target, rec.Code)
		}
	}

	open := []struct {
		method, target string
		status         int
	}{
		{http.MethodGet, "/v1/records", http.StatusOK},
		{http.MethodDelete, "/v1/records/1", http.StatusNoContent},
		{http.MethodGet, "/v1/records/chart", http.StatusNotFound},
		{http.MethodGet, "/health", http.StatusOK},
	}
	for _, tc := range open {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
		if rec.Code != tc.status {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.target, tc.status, rec.Code)
		}
	}

	if len(lim.AllowCalls) != len(limited) {
		t.Errorf("expected limiter consulted %d times, got %d", len(limited), len(lim.AllowCalls))
	}
}
