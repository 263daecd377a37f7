package migrator

import (
	"ariga.io/atlas/sql/schema"
	"github.com/eleven-am/cinelog/internal/orm"
)

const (
	UsersTable  = "users"
	MoviesTable = "movies"
)

// tableDDL holds the CREATE statement for one table in each dialect.
type tableDDL struct {
	name     string
	sqlite   string
	postgres string
}

// Tables are created in this order; movies references users.
var tables = []tableDDL{
	{
		name: UsersTable,
		sqlite: `CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL
)`,
		postgres: `CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT UNIQUE NOT NULL
)`,
	},
	{
		name: MoviesTable,
		sqlite: `CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	year INTEGER NOT NULL,
	rating REAL NOT NULL,
	poster_url TEXT,
	note TEXT,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	UNIQUE(user_id, title)
)`,
		postgres: `CREATE TABLE IF NOT EXISTS movies (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	year INTEGER NOT NULL,
	rating DOUBLE PRECISION NOT NULL,
	poster_url TEXT,
	note TEXT,
	UNIQUE(user_id, title)
)`,
	},
}

func (t tableDDL) statement(d orm.Dialect) string {
	if d.Name == orm.Postgres.Name {
		return t.postgres
	}
	return t.sqlite
}

// CreateStatements returns the CREATE TABLE statements for the dialect.
func CreateStatements(d orm.Dialect) []string {
	stmts := make([]string, 0, len(tables))
	for _, t := range tables {
		stmts = append(stmts, t.statement(d))
	}
	return stmts
}

// additiveColumns lists the nullable columns that older movie tables may
// lack. They can be added in place without touching existing rows.
func additiveColumns() map[string][]*schema.Column {
	return map[string][]*schema.Column{
		MoviesTable: {
			nullableText("poster_url"),
			nullableText("note"),
		},
	}
}

func nullableText(name string) *schema.Column {
	return &schema.Column{
		Name: name,
		Type: &schema.ColumnType{
			Type: &schema.StringType{T: "text"},
			Null: true,
		},
	}
}
