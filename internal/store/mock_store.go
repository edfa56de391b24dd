package store

import "github.com/evyataryagoni/iptracker/internal/models"

// MockStore is a test double for the RecordStore interface
// It keeps rows in a slice and hands out ids the way AUTOINCREMENT does
type MockStore struct {
	Records []models.StoredRecord
	nextID  int64

	// Track method calls for verification in tests
	EnsureSchemaCalls int
	CreateCalls       []models.StoredRecord
	UpdateCalls       []int64
	DeleteCalls       []int64
	CloseCalled       bool

	// Control behavior for error scenarios
	EnsureSchemaError error
	CreateError       error
	ListAllError      error
	UpdateError       error
	DeleteError       error
	CloseError        error
}

// NewMockStore creates an empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		Records: []models.StoredRecord{},
		nextID:  1,
	}
}

// EnsureSchema implements the RecordStore interface
func (m *MockStore) EnsureSchema() error {
	m.EnsureSchemaCalls++
	return m.EnsureSchemaError
}

// Create implements the RecordStore interface
func (m *MockStore) Create(ipAddress, details string) error {
	m.CreateCalls = append(m.CreateCalls, models.StoredRecord{IPAddress: ipAddress, Details: details})
	if m.CreateError != nil {
		return m.CreateError
	}

	if m.nextID == 0 {
		m.nextID = 1
	}
	m.Records = append(m.Records, models.StoredRecord{
		ID:        m.nextID,
		IPAddress: ipAddress,
		Details:   details,
	})
	m.nextID++
	return nil
}

// ListAll implements the RecordStore interface
func (m *MockStore) ListAll() ([]models.StoredRecord, error) {
	if m.ListAllError != nil {
		return nil, m.ListAllError
	}
	records := make([]models.StoredRecord, len(m.Records))
	copy(records, m.Records)
	return records, nil
}

// Update implements the RecordStore interface
func (m *MockStore) Update(id int64, details string) (bool, error) {
	m.UpdateCalls = append(m.UpdateCalls, id)
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	for i := range m.Records {
		if m.Records[i].ID == id {
			m.Records[i].Details = details
			return true, nil
		}
	}
	return false, nil
}

// Delete implements the RecordStore interface
func (m *MockStore) Delete(id int64) (bool, error) {
	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteError != nil {
		return false, m.DeleteError
	}
	for i := range m.Records {
		if m.Records[i].ID == id {
			m.Records = append(m.Records[:i], m.Records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Close implements the RecordStore interface
func (m *MockStore) Close() error {
	m.CloseCalled = true
	return m.CloseError
}
