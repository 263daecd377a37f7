package migrator

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/eleven-am/cinelog/internal/orm"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type DBConfig struct {
	// Driver is sqlite (default) or postgres.
	Driver string
	// Path is the database file for sqlite.
	Path string
	// URL is the connection string for postgres.
	URL string

	BusyTimeout     time.Duration
	ConnMaxLifetime time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
}

func NewDBConfig(path string) *DBConfig {
	return &DBConfig{
		Driver:          "sqlite",
		Path:            path,
		BusyTimeout:     5 * time.Second,
		ConnMaxLifetime: 10 * time.Minute,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
	}
}

// Dialect resolves the configured driver.
func (cfg *DBConfig) Dialect() (orm.Dialect, error) {
	return orm.DialectFor(cfg.Driver)
}

// DSN builds the driver-specific connection string.
func (cfg *DBConfig) DSN() (string, error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return "", err
	}

	switch dialect.Name {
	case orm.Postgres.Name:
		if cfg.URL == "" {
			return "", fmt.Errorf("database url is required for the postgres driver")
		}
		return cfg.URL, nil
	default:
		if cfg.Path == "" {
			return "", fmt.Errorf("database path is required for the sqlite driver")
		}
		return SQLiteDSN(cfg.Path, cfg.BusyTimeout), nil
	}
}

// SQLiteDSN returns a DSN that enables foreign keys (needed for ON DELETE
// CASCADE) and sets the busy timeout on every pooled connection.
func SQLiteDSN(path string, busyTimeout time.Duration) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	if busyTimeout > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	}
	return path + "?" + params.Encode()
}

func (cfg *DBConfig) Connect(ctx context.Context) (*sqlx.DB, error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	if dialect.Name == orm.SQLite.Name {
		if err := ensureDataDir(cfg.Path); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if dialect.Name == orm.SQLite.Name || maxOpen <= 0 {
		// one writer at a time; the engine serializes anyway
		maxOpen = 1
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func ensureDataDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
