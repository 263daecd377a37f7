package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
)

// ErrNoStatements is returned for every statement run through a TxRecorder.
var ErrNoStatements = errors.New("testutil: recorder does not run statements")

// TxRecorder is a database/sql connector that only records the options each
// transaction was started with.
type TxRecorder struct {
	mu   sync.Mutex
	opts []driver.TxOptions
}

// NewRecordingDB returns a handle backed by a fresh TxRecorder.
func NewRecordingDB(driverName string) (*sqlx.DB, *TxRecorder) {
	rec := &TxRecorder{}
	return sqlx.NewDb(sql.OpenDB(rec), driverName), rec
}

// Options returns the recorded transaction options in begin order.
func (r *TxRecorder) Options() []driver.TxOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]driver.TxOptions(nil), r.opts...)
}

func (r *TxRecorder) Connect(context.Context) (driver.Conn, error) {
	return &recordingConn{rec: r}, nil
}

func (r *TxRecorder) Driver() driver.Driver {
	return recordingDriver{rec: r}
}

type recordingDriver struct {
	rec *TxRecorder
}

func (d recordingDriver) Open(string) (driver.Conn, error) {
	return &recordingConn{rec: d.rec}, nil
}

type recordingConn struct {
	rec *TxRecorder
}

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, ErrNoStatements
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *recordingConn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.rec.mu.Lock()
	c.rec.opts = append(c.rec.opts, opts)
	c.rec.mu.Unlock()
	return recordingTx{}, nil
}

type recordingTx struct{}

func (recordingTx) Commit() error   { return nil }
func (recordingTx) Rollback() error { return nil }
