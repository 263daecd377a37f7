// Package testutil provides throwaway SQLite databases and schema
// assertions for tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// TestDB provides a test database connection
type TestDB struct {
	DB   *sqlx.DB
	Path string
	t    *testing.T
}

// NewTestDB opens an empty SQLite file in the test's temp dir with foreign
// keys enabled. It is closed when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("Failed to ping test database: %v", err)
	}

	tdb := &TestDB{DB: db, Path: path, t: t}
	t.Cleanup(tdb.Cleanup)
	return tdb
}

// Cleanup closes the connection
func (tdb *TestDB) Cleanup() {
	if err := tdb.DB.Close(); err != nil {
		tdb.t.Logf("Failed to close test database: %v", err)
	}
}

// ExecuteSQL executes SQL statements
func (tdb *TestDB) ExecuteSQL(sql string) error {
	statements := strings.Split(sql, ";")
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tdb.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute SQL: %w\nStatement: %s", err, stmt)
		}
	}
	return nil
}

// TableExists checks if a table exists
func (tdb *TestDB) TableExists(tableName string) (bool, error) {
	var exists bool
	err := tdb.DB.Get(&exists, `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`, tableName)
	return exists, err
}

// Columns lists a table's columns in declaration order.
func (tdb *TestDB) Columns(tableName string) ([]string, error) {
	var columns []string
	err := tdb.DB.Select(&columns, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, tableName)
	return columns, err
}

// ColumnExists checks if a column exists in a table
func (tdb *TestDB) ColumnExists(tableName, columnName string) (bool, error) {
	var exists bool
	err := tdb.DB.Get(&exists, `SELECT EXISTS (SELECT 1 FROM pragma_table_info(?) WHERE name = ?)`, tableName, columnName)
	return exists, err
}

// GetColumnType returns the declared type of a column
func (tdb *TestDB) GetColumnType(tableName, columnName string) (string, error) {
	var dataType string
	err := tdb.DB.Get(&dataType, `SELECT type FROM pragma_table_info(?) WHERE name = ?`, tableName, columnName)
	return dataType, err
}

// Count returns the number of rows in a table
func (tdb *TestDB) Count(tableName string) (int, error) {
	var n int
	err := tdb.DB.Get(&n, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, tableName))
	return n, err
}
