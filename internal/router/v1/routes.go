package v1

import (
	"net/http"

	"github.com/evyataryagoni/iptracker/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures all v1 API routes
// upstreamLimit wraps every route that queries the geolocation API
func SetupRoutes(h *handler.TrackerHandler, upstreamLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Routes that call the geolocation API
	r.Group(func(r chi.Router) {
		r.Use(upstreamLimit)

		// GET /v1/lookup?ip=<ip>
		r.Get("/lookup", h.Lookup)
		// POST /v1/records/capture?ip=<ip>
		r.Post("/records/capture", h.Capture)
		// POST /v1/map?ip=<ip>
		r.Post("/map", h.ShowMap)
	})

	// Local record management
	r.Get("/records", h.ListRecords)
	r.Post("/records", h.CreateRecord)
	r.Get("/records/chart", h.RecordsChart)
	r.Put("/records/{id}", h.UpdateRecord)
	r.Delete("/records/{id}", h.DeleteRecord)

	return r
}
