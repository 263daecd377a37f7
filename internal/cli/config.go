package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/eleven-am/cinelog/internal/logger"
	"github.com/eleven-am/cinelog/internal/migrator"
	"github.com/eleven-am/cinelog/internal/orm"
	"github.com/eleven-am/cinelog/internal/validation"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "cinelog.yaml"
	DefaultDBPath     = "data/movies.db"
	DefaultTimeout    = 30 * time.Second
)

var configLocations = []string{"cinelog.yaml", "cinelog.yml", ".cinelog.yaml", ".cinelog.yml"}

// CatalogConfig represents the cinelog.yaml configuration structure
type CatalogConfig struct {
	Version string `yaml:"version"`

	Database struct {
		Driver         string        `yaml:"driver" validate:"oneof=sqlite postgres"`
		Path           string        `yaml:"path,omitempty" validate:"required_if=Driver sqlite"`
		URL            string        `yaml:"url,omitempty" validate:"required_if=Driver postgres"`
		MaxConnections int           `yaml:"max_connections" validate:"gte=0"`
		BusyTimeout    time.Duration `yaml:"busy_timeout" validate:"gte=0"`
	} `yaml:"database"`

	Profile struct {
		DefaultUser string `yaml:"default_user,omitempty"`
	} `yaml:"profile"`

	Logging struct {
		Level  string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error silent"`
		Format string `yaml:"format,omitempty" validate:"omitempty,oneof=console json"`

		// SlowQuery warns about statements that take at least this long.
		// Zero disables the check.
		SlowQuery time.Duration `yaml:"slow_query,omitempty" validate:"gte=0"`
	} `yaml:"logging"`

	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *CatalogConfig {
	cfg := &CatalogConfig{Version: "1"}
	cfg.applyDefaults()
	return cfg
}

func (c *CatalogConfig) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = orm.SQLite.Name
	}
	if c.Database.Driver == orm.SQLite.Name && c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 10
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = 5 * time.Second
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// LoadCatalogConfig reads the config file at path, or the first of the
// default locations when path is empty. A missing default file is not an
// error; defaults are returned instead.
func LoadCatalogConfig(path string) (*CatalogConfig, error) {
	if path == "" {
		path = GetConfigPath()
	}

	config := &CatalogConfig{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		logger.ConfigLoader().Debug("Loaded config file", "path", path)
	}

	if config.Database.Driver != "" {
		dialect, err := orm.DialectFor(config.Database.Driver)
		if err != nil {
			return nil, err
		}
		config.Database.Driver = dialect.Name
	}
	config.applyDefaults()

	return config, nil
}

// GetConfigPath returns CINELOG_CONFIG or the first default location that
// exists, or "" when there is none.
func GetConfigPath() string {
	if path := os.Getenv("CINELOG_CONFIG"); path != "" {
		return path
	}

	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

func SaveCatalogConfig(config *CatalogConfig, path string) error {
	if path == "" {
		path = DefaultConfigFile
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.ConfigLoader().Debug("Loaded environment file", "path", path)
	return nil
}

// ApplyEnv overrides config values from CINELOG_* environment variables.
func (c *CatalogConfig) ApplyEnv() error {
	if v := os.Getenv("CINELOG_DB_DRIVER"); v != "" {
		dialect, err := orm.DialectFor(v)
		if err != nil {
			return fmt.Errorf("CINELOG_DB_DRIVER: %w", err)
		}
		c.Database.Driver = dialect.Name
	}
	if v := os.Getenv("CINELOG_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("CINELOG_DATABASE_URL"); v != "" {
		c.Database.URL = v
		if os.Getenv("CINELOG_DB_DRIVER") == "" {
			c.Database.Driver = orm.Postgres.Name
		}
	}
	if v := os.Getenv("CINELOG_USER"); v != "" {
		c.Profile.DefaultUser = v
	}
	if v := os.Getenv("CINELOG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CINELOG_SLOW_QUERY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CINELOG_SLOW_QUERY: %w", err)
		}
		c.Logging.SlowQuery = d
	}
	if v := os.Getenv("CINELOG_TIMEOUT"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("CINELOG_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// parseSeconds accepts a Go duration ("45s") or a bare number of seconds.
func parseSeconds(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func (c *CatalogConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DBConfig converts the database section for the migrator.
func (c *CatalogConfig) DBConfig() *migrator.DBConfig {
	cfg := migrator.NewDBConfig(c.Database.Path)
	cfg.Driver = c.Database.Driver
	cfg.URL = c.Database.URL
	cfg.BusyTimeout = c.Database.BusyTimeout
	if c.Database.Driver == orm.Postgres.Name {
		cfg.MaxOpenConns = c.Database.MaxConnections
		cfg.MaxIdleConns = c.Database.MaxConnections / 2
	}
	return cfg
}
