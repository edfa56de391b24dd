package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/evyataryagoni/iptracker/internal/chart"
	"github.com/evyataryagoni/iptracker/internal/lookup"
	"github.com/evyataryagoni/iptracker/internal/mapview"
	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/evyataryagoni/iptracker/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// TrackerHandler handles HTTP requests for the IP tracker
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Parse HTTP requests (query parameters, path ids, JSON bodies)
//   - Call service methods
//   - Map service errors to status codes and user facing messages
//   - NO business logic (that's in the service layer)
type TrackerHandler struct {
	service   *service.TrackerService
	validator *validator.Validate
}

// NewTrackerHandler creates a new tracker handler with the given service
func NewTrackerHandler(service *service.TrackerService) *TrackerHandler {
	return &TrackerHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Lookup handles GET /v1/lookup?ip=<ip>
func (h *TrackerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Lookup(r.Context(), r.URL.Query().Get("ip"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Capture handles POST /v1/records/capture?ip=<ip>
// It looks the address up and stores the result as a new record
func (h *TrackerHandler) Capture(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Capture(r.Context(), r.URL.Query().Get("ip"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

// CreateRecord handles POST /v1/records
func (h *TrackerHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRecordRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.service.StoreRecord(req.IPAddress, req.Details); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ListRecords handles GET /v1/records
func (h *TrackerHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListRecords()
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if records == nil {
		records = []models.StoredRecord{}
	}
	h.respondJSON(w, http.StatusOK, records)
}

// UpdateRecord handles PUT /v1/records/{id}
// Unknown ids are accepted without changing anything
func (h *TrackerHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	var req models.UpdateRecordRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.service.UpdateRecord(id, req.Details); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRecord handles DELETE /v1/records/{id}
// Unknown ids are accepted without changing anything
func (h *TrackerHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteRecord(id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShowMap handles POST /v1/map?ip=<ip>
func (h *TrackerHandler) ShowMap(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.ShowMap(r.Context(), r.URL.Query().Get("ip"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, models.MapResponse{File: path})
}

// RecordsChart handles GET /v1/records/chart
func (h *TrackerHandler) RecordsChart(w http.ResponseWriter, r *http.Request) {
	// Render fully before writing so a failure can still change the status
	var buf bytes.Buffer
	if err := h.service.RecordsChart(&buf); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// recordID parses the {id} path parameter, answering 400 when it is not a number
func (h *TrackerHandler) recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid record id")
		return 0, false
	}
	return id, true
}

// decodeBody decodes and validates a JSON request body into dst
func (h *TrackerHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "Missing required fields")
		return false
	}
	return true
}

// respondServiceError maps service errors to status codes
// Internal error text never reaches the client
func (h *TrackerHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyIP):
		h.respondError(w, http.StatusBadRequest, "Please enter an IP address.")
	case errors.Is(err, service.ErrInvalidIP):
		h.respondError(w, http.StatusBadRequest, "Invalid IP address format")
	case errors.Is(err, lookup.ErrLookupFailed):
		h.respondError(w, http.StatusBadGateway, "Failed to fetch details.")
	case errors.Is(err, mapview.ErrNoLocation):
		h.respondError(w, http.StatusUnprocessableEntity, "Location data not available for this IP.")
	case errors.Is(err, chart.ErrNoRecords):
		h.respondError(w, http.StatusNotFound, "No data to visualize.")
	default:
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// respondJSON writes a JSON response with the given status code
func (h *TrackerHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, we can't change the status code since headers are already sent
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError writes an error response with consistent formatting
func (h *TrackerHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
