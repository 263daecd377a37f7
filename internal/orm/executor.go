package orm

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DBExecutor represents an interface that can execute database operations.
// It is satisfied by both *sqlx.DB and *sqlx.Tx, so statements can run on a
// plain connection or inside a transaction.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error

	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row

	// DriverName returns the driverName passed to the Open function for this DB.
	DriverName() string
}

// Compile-time checks to ensure both sqlx.DB and sqlx.Tx implement DBExecutor
var (
	_ DBExecutor = (*sqlx.DB)(nil)
	_ DBExecutor = (*sqlx.Tx)(nil)
)

// Sqlizer is anything that renders to SQL plus arguments, e.g. squirrel builders.
type Sqlizer interface {
	ToSql() (string, []interface{}, error)
}

// Exec renders b and executes it on ex, returning the affected row count.
func Exec(ctx context.Context, ex DBExecutor, b Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	qc := &QueryContext{Kind: QueryExec, Query: query, Args: args}
	err = run(ctx, qc, func(ctx context.Context, qc *QueryContext) error {
		result, err := ex.ExecContext(ctx, qc.Query, qc.Args...)
		if err != nil {
			return err
		}

		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		qc.Rows = n
		return nil
	})
	return qc.Rows, err
}

// Select renders b and scans all rows into dest.
func Select(ctx context.Context, ex DBExecutor, dest interface{}, b Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	qc := &QueryContext{Kind: QuerySelect, Query: query, Args: args}
	return run(ctx, qc, func(ctx context.Context, qc *QueryContext) error {
		return ex.SelectContext(ctx, dest, qc.Query, qc.Args...)
	})
}

// Get renders b and scans a single row into dest. sql.ErrNoRows is returned
// unchanged when nothing matches.
func Get(ctx context.Context, ex DBExecutor, dest interface{}, b Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	qc := &QueryContext{Kind: QueryGet, Query: query, Args: args}
	return run(ctx, qc, func(ctx context.Context, qc *QueryContext) error {
		err := ex.GetContext(ctx, dest, qc.Query, qc.Args...)
		if err == nil {
			qc.Rows = 1
		}
		return err
	})
}
