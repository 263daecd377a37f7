package orm

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Dialect captures what differs between the supported engines at query time.
type Dialect struct {
	// Name is the config-facing name of the engine.
	Name string
	// DriverName is the database/sql driver to open.
	DriverName  string
	Placeholder squirrel.PlaceholderFormat
	parseError  func(err error, op, table string) error
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		DriverName:  "sqlite",
		Placeholder: squirrel.Question,
		parseError:  ParseSQLiteError,
	}

	Postgres = Dialect{
		Name:        "postgres",
		DriverName:  "postgres",
		Placeholder: squirrel.Dollar,
		parseError:  ParsePostgreSQLError,
	}
)

// DialectFor resolves a driver name from configuration.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q (supported: sqlite, postgres)", name)
	}
}

// Builder returns a squirrel statement builder using this dialect's placeholders.
func (d Dialect) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

// ParseError classifies a driver error into an *Error.
func (d Dialect) ParseError(err error, op, table string) error {
	if d.parseError == nil {
		return ParseSQLiteError(err, op, table)
	}
	return d.parseError(err, op, table)
}
