package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/evyataryagoni/iptracker/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultDatabasePath is the single-file SQLite database in the working directory
const DefaultDatabasePath = "ip_tracker.db"

// IPRecordModel is the GORM model for the ip_data table
type IPRecordModel struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	IPAddress string `gorm:"column:ip_address"`
	Details   string `gorm:"column:details"`
}

// TableName specifies the table name for GORM
// By default, GORM would pluralize to "ip_record_models"
func (IPRecordModel) TableName() string {
	return "ip_data"
}

// schemas holds the ip_data DDL per gorm dialect name.
// AUTOINCREMENT (not just INTEGER PRIMARY KEY) keeps SQLite from reusing ids.
var schemas = map[string]string{
	"sqlite": `CREATE TABLE IF NOT EXISTS ip_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip_address TEXT,
		details TEXT
	)`,
	"mysql": `CREATE TABLE IF NOT EXISTS ip_data (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		ip_address TEXT,
		details TEXT
	)`,
}

// GormStore implements RecordStore with GORM
//
// Each call checks out one connection from the pool with db.Connection,
// runs a single statement on it, and hands it back on every exit path.
// Writes go through GORM's default single-statement transaction.
type GormStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the SQLite database file at path
//
// Parameters:
//   - path: database file, DefaultDatabasePath when empty
//
// Returns:
//   - *GormStore: pointer to the created store
//   - error: any error that occurred while opening the file
func NewSQLiteStore(path string) (*GormStore, error) {
	if path == "" {
		path = DefaultDatabasePath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for SQLite: %w", err)
		}
	}

	store, err := newGormStore(sqlite.Open(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite has a single writer; one pooled connection serializes
	// concurrent callers instead of failing with "database is locked"
	sqlDB, err := store.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return store, nil
}

// NewMySQLStore connects to a MySQL server
//
// Parameters:
//   - dsn: Data Source Name
//     Format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLStore(dsn string) (*GormStore, error) {
	store, err := newGormStore(mysql.Open(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := store.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return store, nil
}

func newGormStore(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &GormStore{db: db}, nil
}

// EnsureSchema creates the ip_data table if it does not exist
func (s *GormStore) EnsureSchema() error {
	ddl, ok := schemas[s.db.Dialector.Name()]
	if !ok {
		return fmt.Errorf("no ip_data schema for dialect %q", s.db.Dialector.Name())
	}

	err := s.db.Connection(func(conn *gorm.DB) error {
		return conn.Exec(ddl).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create ip_data table: %w", err)
	}
	return nil
}

// Create appends a new row
// GORM query: INSERT INTO ip_data (ip_address, details) VALUES (?, ?)
func (s *GormStore) Create(ipAddress, details string) error {
	record := IPRecordModel{IPAddress: ipAddress, Details: details}

	err := s.db.Connection(func(conn *gorm.DB) error {
		return conn.Create(&record).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	return nil
}

// ListAll returns every row without an ORDER BY, i.e. in the storage's
// natural (insertion, in practice) order
func (s *GormStore) ListAll() ([]models.StoredRecord, error) {
	var rows []IPRecordModel

	err := s.db.Connection(func(conn *gorm.DB) error {
		return conn.Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	records := make([]models.StoredRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.StoredRecord{
			ID:        row.ID,
			IPAddress: row.IPAddress,
			Details:   row.Details,
		})
	}
	return records, nil
}

// Update replaces details for the row with the given id
// GORM query: UPDATE ip_data SET details = ? WHERE id = ?
func (s *GormStore) Update(id int64, details string) (bool, error) {
	var affected int64

	err := s.db.Connection(func(conn *gorm.DB) error {
		result := conn.Model(&IPRecordModel{}).Where("id = ?", id).Update("details", details)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to update record %d: %w", id, err)
	}
	return affected > 0, nil
}

// Delete removes the row with the given id
// GORM query: DELETE FROM ip_data WHERE id = ?
func (s *GormStore) Delete(id int64) (bool, error) {
	var affected int64

	err := s.db.Connection(func(conn *gorm.DB) error {
		result := conn.Where("id = ?", id).Delete(&IPRecordModel{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	return affected > 0, nil
}

// Close closes the database connection
// Should be called when the application shuts down
func (s *GormStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
