package store

import "github.com/evyataryagoni/iptracker/internal/models"

// RecordStore owns the ip_data table of captured lookups
// Allows multiple backends (SQLite, MySQL) and easy testing with mocks
//
// Every operation is a single statement against durable storage.
// Update and Delete on an unknown id are silent no-ops: they report
// matched == false but no error.
type RecordStore interface {
	// EnsureSchema creates the ip_data table if absent; safe on every start
	EnsureSchema() error

	// Create appends a row with an auto-assigned id
	Create(ipAddress, details string) error

	// ListAll returns every row in the storage's natural order
	ListAll() ([]models.StoredRecord, error)

	// Update replaces details wholesale for the row with the given id
	Update(id int64, details string) (matched bool, err error)

	// Delete removes the row with the given id
	Delete(id int64) (matched bool, err error)

	// Close releases the underlying database handle
	Close() error
}
