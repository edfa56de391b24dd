package store

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB creates a GormStore on top of a mocked MySQL connection
func setupMockDB(t *testing.T) (*GormStore, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return &GormStore{db: db}, mock, sqlDB
}

// TestMySQLStore_EnsureSchema tests the MySQL flavour of the ip_data DDL
func TestMySQLStore_EnsureSchema(t *testing.T) {
	store, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ip_data")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.EnsureSchema(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_Create tests that create is one INSERT in its own transaction
func TestMySQLStore_Create(t *testing.T) {
	store, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `ip_data` (`ip_address`,`details`) VALUES (?,?)")).
		WithArgs("8.8.8.8", googleDetails).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := store.Create("8.8.8.8", googleDetails); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_Create_Unreachable tests that a storage failure fails the call
func TestMySQLStore_Create_Unreachable(t *testing.T) {
	store, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	if err := store.Create("8.8.8.8", googleDetails); err == nil {
		t.Error("expected error when the database is unreachable")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_Create_RollbackOnFailure tests that a failed INSERT is rolled back
func TestMySQLStore_Create_RollbackOnFailure(t *testing.T) {
	store, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `ip_data`")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if err := store.Create("8.8.8.8", googleDetails); err == nil {
		t.Error("expected error from failed insert")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_ListAll tests the unordered full-table read
func TestMySQLStore_ListAll(t *testing.T) {
	store, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	rows := sqlmock.NewRows([]string{"id", "ip_address", "details"}).
		AddRow(1, "8.8.8.8", googleDetails).
		AddRow(2, "1.1.1.1", `{"ip":"1.1.1.1"}`)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `ip_data`")).
		WillReturnRows(rows)

	records, err := store.ListAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != 1 || records[0].IPAddress != "8.8.8.8" || records[0].Details != googleDetails {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].ID != 2 || records[1].IPAddress != "1.1.1.1" {
		t.Errorf("unexpected second record: %+v", records[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_ListAll_DatabaseError tests read failures
func TestMySQLStore_ListAll_DatabaseError(t *testing.T) {
	store, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `ip_data`")).
		WillReturnError(sql.ErrConnDone)

	records, err := store.ListAll()
	if err == nil {
		t.Error("expected database error, got nil")
	}
	if records != nil {
		t.Errorf("expected nil records, got %+v", records)
	}

	mock.ExpectationsWereMet()
}

// TestMySQLStore_Update tests matched and unmatched updates
func TestMySQLStore_Update(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		matched  bool
	}{
		{"existing id", 1, true},
		{"missing id is a silent no-op", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock, sqlDB := setupMockDB(t)
			defer sqlDB.Close()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("UPDATE `ip_data` SET `details`=? WHERE id = ?")).
				WithArgs("new details", int64(7)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()

			matched, err := store.Update(7, "new details")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if matched != tt.matched {
				t.Errorf("expected matched %v, got %v", tt.matched, matched)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

// TestMySQLStore_Delete tests matched and unmatched deletes
func TestMySQLStore_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		matched  bool
	}{
		{"existing id", 1, true},
		{"missing id is a silent no-op", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock, sqlDB := setupMockDB(t)
			defer sqlDB.Close()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `ip_data` WHERE id = ?")).
				WithArgs(int64(3)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()

			matched, err := store.Delete(3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if matched != tt.matched {
				t.Errorf("expected matched %v, got %v", tt.matched, matched)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

// TestMySQLStore_Close tests cleanup
func TestMySQLStore_Close(t *testing.T) {
	store, mock, _ := setupMockDB(t)

	mock.ExpectClose()

	if err := store.Close(); err != nil {
		t.Errorf("unexpected error on close: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestGormStore_Close_NilDB tests close with nil db
func TestGormStore_Close_NilDB(t *testing.T) {
	store := &GormStore{db: nil}

	if err := store.Close(); err != nil {
		t.Errorf("expected no error for nil db, got: %v", err)
	}
}

// TestIPRecordModel_TableName tests GORM table name override
func TestIPRecordModel_TableName(t *testing.T) {
	if name := (IPRecordModel{}).TableName(); name != "ip_data" {
		t.Errorf("expected table name 'ip_data', got '%s'", name)
	}
}
