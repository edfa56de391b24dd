package router

import (
	"net/http"

	"github.com/evyataryagoni/iptracker/internal/handler"
	"github.com/evyataryagoni/iptracker/internal/limiter"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/metrics"
	custommiddleware "github.com/evyataryagoni/iptracker/internal/middleware"
	v1 "github.com/evyataryagoni/iptracker/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRouter creates and configures the Chi router with all middleware and routes
//
// Parameters:
//   - trackerHandler: the tracker handler
//   - rateLimiter: guards the routes that call the geolocation API (memory or Redis)
//   - m: metrics collector
//   - log: structured logger
func SetupRouter(trackerHandler *handler.TrackerHandler, rateLimiter limiter.Limiter, m *metrics.Metrics, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Order matters! RequestID first so every log line carries it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.MetricsMiddleware(m))

	// Rate limiting is applied inside v1, only where the upstream API is called
	r.Mount("/v1", v1.SetupRoutes(trackerHandler, custommiddleware.RateLimitMiddleware(rateLimiter)))

	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", m.Handler())

	return r
}

// healthCheckHandler is a simple health check endpoint
// Returns 200 OK if the service is running
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
