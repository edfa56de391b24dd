package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// LookupResult is the normalized answer of one geolocation query.
// Latitude and Longitude are either both set or both nil.
type LookupResult struct {
	IP        string   `json:"ip"`
	City      string   `json:"city"`
	Region    string   `json:"region"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	ISP       string   `json:"isp"`
	Timezone  string   `json:"timezone"`
}

// HasCoordinates reports whether the result can be placed on a map
func (r *LookupResult) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Snapshot serializes the result into the details string kept by the
// record store (JSON, four-space indent, &, < and > left as written)
func (r *LookupResult) Snapshot() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// StoredRecord is one persisted row of the ip_data table
type StoredRecord struct {
	ID        int64  `json:"id"`
	IPAddress string `json:"ip_address"`
	Details   string `json:"details"`
}

// CreateRecordRequest is the body of POST /v1/records
type CreateRecordRequest struct {
	IPAddress string `json:"ip_address" validate:"required"`
	Details   string `json:"details" validate:"required"`
}

// UpdateRecordRequest is the body of PUT /v1/records/{id}
type UpdateRecordRequest struct {
	Details string `json:"details" validate:"required"`
}

// MapResponse tells the caller where the generated map was written
type MapResponse struct {
	File string `json:"file"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
}
