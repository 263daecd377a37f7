package orm

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Common errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrForeignKey       = errors.New("foreign key violation")
	ErrCheckConstraint  = errors.New("check constraint violation")
	ErrNotNull          = errors.New("not null constraint violation")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrTimeout          = errors.New("operation timeout")
	ErrCanceled         = errors.New("operation canceled")
)

// Error provides detailed error information
type Error struct {
	Op         string // Operation that failed
	Table      string // Table involved
	Err        error  // Underlying error
	Constraint string // Constraint name (if applicable)
	Column     string // Column name (if applicable)
	Retryable  bool   // Whether the operation can be retried
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("orm: %s", e.Op))

	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column=%s", e.Column))
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("constraint=%s", e.Constraint))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for Error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return errors.Is(e.Err, target)
	}

	if t.Op != "" && e.Op == t.Op {
		return true
	}

	return errors.Is(e.Err, t.Err)
}

// ParsePostgreSQLError converts PostgreSQL errors to ORM errors
func ParsePostgreSQLError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if parsed := parsePQError(pqErr, op, table); parsed != nil {
			return parsed
		}
	}

	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "duplicate key value violates unique constraint"):
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: extractConstraintName(errStr)}
	case strings.Contains(errStr, "violates foreign key constraint"):
		return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: extractConstraintName(errStr)}
	case strings.Contains(errStr, "violates not-null constraint"):
		return &Error{Op: op, Table: table, Err: ErrNotNull, Column: extractColumnName(errStr)}
	case strings.Contains(errStr, "violates check constraint"):
		return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: extractConstraintName(errStr)}
	}

	if parsed := parseCommonError(errStr, op, table); parsed != nil {
		return parsed
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "no such host") {
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed, Retryable: true}
	}

	return &Error{Op: op, Table: table, Err: err}
}

// parsePQError classifies by SQLSTATE. It returns nil for codes it does not
// know so the caller can fall back to the message.
func parsePQError(pqErr *pq.Error, op, table string) *Error {
	switch pqErr.Code {
	case "23505":
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: pqErr.Constraint}
	case "23503":
		return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: pqErr.Constraint}
	case "23502":
		return &Error{Op: op, Table: table, Err: ErrNotNull, Column: pqErr.Column}
	case "23514":
		return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: pqErr.Constraint}
	case "57014":
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	}

	switch pqErr.Code.Class() {
	// connection exception, insufficient resources, operator intervention
	case "08", "53", "57":
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed, Retryable: true}
	}
	return nil
}

// ParseSQLiteError converts SQLite errors to ORM errors. Driver result codes
// are checked first; the message is matched when no code is available. The
// engine reports constraint failures as e.g.
// "UNIQUE constraint failed: movies.user_id, movies.title".
func ParseSQLiteError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		if parsed := parseSQLiteCode(liteErr.Code(), liteErr.Error(), op, table); parsed != nil {
			return parsed
		}
	}

	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "UNIQUE constraint failed"),
		strings.Contains(errStr, "PRIMARY KEY constraint failed"):
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: extractSQLiteColumns(errStr)}
	case strings.Contains(errStr, "FOREIGN KEY constraint failed"):
		return &Error{Op: op, Table: table, Err: ErrForeignKey}
	case strings.Contains(errStr, "NOT NULL constraint failed"):
		return &Error{Op: op, Table: table, Err: ErrNotNull, Column: extractSQLiteColumns(errStr)}
	case strings.Contains(errStr, "CHECK constraint failed"):
		return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: extractSQLiteColumns(errStr)}
	}

	if parsed := parseCommonError(errStr, op, table); parsed != nil {
		return parsed
	}

	switch {
	case strings.Contains(errStr, "database is locked"),
		strings.Contains(errStr, "database table is locked"):
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed, Retryable: true}
	case strings.Contains(errStr, "unable to open database file"),
		strings.Contains(errStr, "attempt to write a readonly database"),
		strings.Contains(errStr, "disk I/O error"),
		strings.Contains(errStr, "database or disk is full"),
		strings.Contains(errStr, "database disk image is malformed"),
		strings.Contains(errStr, "file is not a database"):
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed}
	}

	return &Error{Op: op, Table: table, Err: err}
}

// parseSQLiteCode maps an extended result code. It returns nil for codes it
// does not know.
func parseSQLiteCode(code int, errStr, op, table string) *Error {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: extractSQLiteColumns(errStr)}
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return &Error{Op: op, Table: table, Err: ErrForeignKey}
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return &Error{Op: op, Table: table, Err: ErrNotNull, Column: extractSQLiteColumns(errStr)}
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: extractSQLiteColumns(errStr)}
	}

	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed, Retryable: true}
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_READONLY, sqlite3.SQLITE_IOERR,
		sqlite3.SQLITE_FULL, sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed}
	}
	return nil
}

// parseCommonError handles errors raised by database/sql or the context
// rather than by a particular engine.
func parseCommonError(errStr, op, table string) *Error {
	switch {
	case strings.Contains(errStr, "context deadline exceeded"):
		return &Error{Op: op, Table: table, Err: ErrTimeout, Retryable: true}
	case strings.Contains(errStr, "context canceled"):
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	case strings.Contains(errStr, "sql: database is closed"),
		strings.Contains(errStr, "driver: bad connection"):
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed}
	}
	return nil
}

// Helper functions to extract information from error messages

func extractConstraintName(errStr string) string {
	start := strings.Index(errStr, "\"")
	if start == -1 {
		return ""
	}
	end := strings.Index(errStr[start+1:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start+1 : start+1+end]
}

func extractColumnName(errStr string) string {
	columnIdx := strings.Index(errStr, "column \"")
	if columnIdx == -1 {
		return ""
	}
	start := columnIdx + 8
	end := strings.Index(errStr[start:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start : start+end]
}

// extractSQLiteColumns returns the "table.col, table.col" list that follows
// "constraint failed: ", without the trailing extended error code.
func extractSQLiteColumns(errStr string) string {
	const marker = "constraint failed: "
	idx := strings.LastIndex(errStr, marker)
	if idx == -1 {
		return ""
	}
	cols := errStr[idx+len(marker):]
	if end := strings.Index(cols, " ("); end != -1 {
		cols = cols[:end]
	}
	return strings.TrimSpace(cols)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Retryable
	}
	return false
}

// IsConstraintError checks if an error is a constraint violation
func IsConstraintError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrForeignKey) ||
		errors.Is(err, ErrCheckConstraint) ||
		errors.Is(err, ErrNotNull)
}

// IsUnavailable reports whether the storage itself could not be reached,
// opened or written.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// GetConstraintName extracts the constraint name from an error
func GetConstraintName(err error) string {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Constraint
	}
	return ""
}

// GetColumnName extracts the column name from an error
func GetColumnName(err error) string {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Column
	}
	return ""
}
