package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/evyataryagoni/iptracker/internal/chart"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/lookup"
	"github.com/evyataryagoni/iptracker/internal/mapview"
	"github.com/evyataryagoni/iptracker/internal/metrics"
	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/evyataryagoni/iptracker/internal/store"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyIP is returned when no address was entered
	ErrEmptyIP = errors.New("ip address is required")

	// ErrInvalidIP is returned for input that is not an IPv4 or IPv6 address
	ErrInvalidIP = errors.New("invalid IP address format")
)

// TrackerService handles business logic for the IP tracker
// This is the service layer - it sits between handlers and the lookup client,
// record store and map writer
type TrackerService struct {
	client    lookup.Client       // Geolocation API client
	store     store.RecordStore   // Persisted lookups
	maps      *mapview.Writer     // Map page writer
	validator *validator.Validate // Validator for input validation
	metrics   *metrics.Metrics    // Metrics collector
	logger    *logger.Logger      // Structured logger
}

// NewTrackerService creates a new tracker service
//
// Parameters:
//   - client: any implementation of the lookup.Client interface
//   - recordStore: any implementation of the store.RecordStore interface
//   - maps: map writer (optional, defaults to the working directory without a browser)
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewTrackerService(client lookup.Client, recordStore store.RecordStore, maps *mapview.Writer, m *metrics.Metrics, log *logger.Logger) *TrackerService {
	if log == nil {
		log = logger.NewDefault()
	}
	if maps == nil {
		maps = mapview.NewWriter(".", false)
	}
	return &TrackerService{
		client:    client,
		store:     recordStore,
		maps:      maps,
		validator: validator.New(),
		metrics:   m,
		logger:    log.WithComponent("TrackerService"),
	}
}

// Lookup validates ip and fetches its geolocation
//
// Flow:
//  1. Trim and validate the address
//  2. Query the geolocation API
//  3. Return the normalized result or error
func (s *TrackerService) Lookup(ctx context.Context, ip string) (*models.LookupResult, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		s.countLookup("invalid")
		return nil, ErrEmptyIP
	}
	if err := s.validator.Var(ip, "ip"); err != nil {
		s.logger.Warn().Str("ip", ip).Msg("Invalid IP address format")
		s.countLookup("invalid")
		return nil, ErrInvalidIP
	}

	s.logger.Debug().Str("ip", ip).Msg("Looking up IP address")
	start := time.Now()
	result, err := s.client.Lookup(ctx, ip)
	if s.metrics != nil {
		s.metrics.LookupDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.Error().Err(err).Str("ip", ip).Msg("Geolocation lookup failed")
		s.countLookup("error")
		return nil, err
	}

	s.logger.Info().
		Str("ip", ip).
		Str("city", result.City).
		Str("country", result.Country).
		Bool("has_location", result.HasCoordinates()).
		Msg("IP lookup successful")
	s.countLookup("success")
	return result, nil
}

// Capture looks up ip and stores the result as a new record.
// Nothing is stored when the lookup fails.
func (s *TrackerService) Capture(ctx context.Context, ip string) (*models.LookupResult, error) {
	result, err := s.Lookup(ctx, ip)
	if err != nil {
		return nil, err
	}

	details, err := result.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize lookup result: %w", err)
	}
	if err := s.StoreRecord(strings.TrimSpace(ip), details); err != nil {
		return nil, err
	}
	return result, nil
}

// StoreRecord appends a record with caller supplied details
func (s *TrackerService) StoreRecord(ipAddress, details string) error {
	start := time.Now()
	err := s.store.Create(ipAddress, details)
	s.observeStoreOp("create", start, err)
	if err != nil {
		s.logger.Error().Err(err).Str("ip", ipAddress).Msg("Failed to store record")
		return err
	}
	s.logger.Info().Str("ip", ipAddress).Msg("Record stored")
	return nil
}

// ListRecords returns every stored record in the store's natural order (no sorting)
func (s *TrackerService) ListRecords() ([]models.StoredRecord, error) {
	start := time.Now()
	records, err := s.store.ListAll()
	s.observeStoreOp("list", start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list records")
		return nil, err
	}
	return records, nil
}

// UpdateRecord replaces the details of record id. An unknown id is not an error.
func (s *TrackerService) UpdateRecord(id int64, details string) error {
	log := s.logger.WithRecordID(id)

	start := time.Now()
	matched, err := s.store.Update(id, details)
	s.observeStoreOp("update", start, err)
	if err != nil {
		log.Error().Err(err).Msg("Failed to update record")
		return err
	}
	if !matched {
		log.Debug().Msg("Update matched no record")
		return nil
	}
	log.Info().Msg("Record updated")
	return nil
}

// DeleteRecord removes record id. An unknown id is not an error.
func (s *TrackerService) DeleteRecord(id int64) error {
	log := s.logger.WithRecordID(id)

	start := time.Now()
	matched, err := s.store.Delete(id)
	s.observeStoreOp("delete", start, err)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete record")
		return err
	}
	if !matched {
		log.Debug().Msg("Delete matched no record")
		return nil
	}
	log.Info().Msg("Record deleted")
	return nil
}

// ShowMap looks up ip and writes a map page centred on its location.
// It returns the written file path; failing to open a browser only logs a warning.
func (s *TrackerService) ShowMap(ctx context.Context, ip string) (string, error) {
	result, err := s.Lookup(ctx, ip)
	if err != nil {
		return "", err
	}

	path, err := s.maps.Write(result)
	if err != nil && !errors.Is(err, mapview.ErrOpenFailed) {
		s.logger.Warn().Err(err).Str("ip", result.IP).Msg("Map not written")
		return "", err
	}

	if s.metrics != nil {
		s.metrics.MapsGenerated.Inc()
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("file", path).Msg("Map written but not opened")
	} else {
		s.logger.Info().Str("ip", result.IP).Str("file", path).Msg("Map written")
	}
	return path, nil
}

// RecordsChart renders the per-address bar chart of all stored records into w
func (s *TrackerService) RecordsChart(w io.Writer) error {
	records, err := s.ListRecords()
	if err != nil {
		return err
	}
	return chart.RenderRecords(w, records)
}

// Close cleans up resources
// This will close the underlying record store
func (s *TrackerService) Close() error {
	return s.store.Close()
}

func (s *TrackerService) countLookup(result string) {
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues(result).Inc()
	}
}

func (s *TrackerService) observeStoreOp(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordStoreOpsTotal.WithLabelValues(operation, status).Inc()
	s.metrics.RecordStoreOpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
