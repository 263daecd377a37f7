package testutil

import "testing"

// TableAssertions provides schema assertion helpers
type TableAssertions struct {
	t   *testing.T
	tdb *TestDB
}

// NewTableAssertions creates table assertion helpers
func NewTableAssertions(t *testing.T, tdb *TestDB) *TableAssertions {
	return &TableAssertions{t: t, tdb: tdb}
}

// AssertTableExists asserts that a table exists
func (ta *TableAssertions) AssertTableExists(tableName string) {
	ta.t.Helper()
	exists, err := ta.tdb.TableExists(tableName)
	if err != nil {
		ta.t.Fatalf("Error checking table existence: %v", err)
	}
	if !exists {
		ta.t.Errorf("Table %s does not exist", tableName)
	}
}

// AssertTableNotExists asserts that a table does not exist
func (ta *TableAssertions) AssertTableNotExists(tableName string) {
	ta.t.Helper()
	exists, err := ta.tdb.TableExists(tableName)
	if err != nil {
		ta.t.Fatalf("Error checking table existence: %v", err)
	}
	if exists {
		ta.t.Errorf("Table %s exists but should not", tableName)
	}
}

// AssertColumnExists asserts that a column exists
func (ta *TableAssertions) AssertColumnExists(tableName, columnName string) {
	ta.t.Helper()
	exists, err := ta.tdb.ColumnExists(tableName, columnName)
	if err != nil {
		ta.t.Fatalf("Error checking column existence: %v", err)
	}
	if !exists {
		ta.t.Errorf("Column %s.%s does not exist", tableName, columnName)
	}
}

// AssertColumnType asserts that a column has the expected declared type
func (ta *TableAssertions) AssertColumnType(tableName, columnName, expectedType string) {
	ta.t.Helper()
	actualType, err := ta.tdb.GetColumnType(tableName, columnName)
	if err != nil {
		ta.t.Fatalf("Error getting column type: %v", err)
	}
	if actualType != expectedType {
		ta.t.Errorf("Column %s.%s has type %s, expected %s",
			tableName, columnName, actualType, expectedType)
	}
}

// AssertRowCount asserts the number of rows in a table
func (ta *TableAssertions) AssertRowCount(tableName string, expected int) {
	ta.t.Helper()
	n, err := ta.tdb.Count(tableName)
	if err != nil {
		ta.t.Fatalf("Error counting rows: %v", err)
	}
	if n != expected {
		ta.t.Errorf("Table %s has %d rows, expected %d", tableName, n, expected)
	}
}
