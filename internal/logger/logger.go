// Package logger provides leveled, structured logging for cinelog.
//
// Messages take optional key/value pairs:
//
//	logger.Info("Schema migrated", "changes", 1)
//	logger.DB().Warn("Insert rejected", "table", "movies", "error", err)
//
// By default only warnings and errors are written. --debug enables info,
// --verbose enables everything.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging interface handed to components.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// Config holds logging configuration.
type Config struct {
	// Level is one of debug, info, warn, error, disabled.
	Level string
	// Format is console or json.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

var (
	mu   sync.RWMutex
	base zerolog.Logger
)

func init() {
	Init(Config{Level: "warn", Format: "console"})
}

// Init (re)configures the global logger.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	out := cfg.Output
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: "15:04:05",
			NoColor:    true,
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()

	mu.Lock()
	base = l
	mu.Unlock()
}

// LevelFromFlags maps the CLI verbosity flags to a level name.
func LevelFromFlags(debug, verbose bool) string {
	switch {
	case verbose:
		return "debug"
	case debug:
		return "info"
	default:
		return "warn"
	}
}

// ParseLevel converts a level name to a zerolog level, defaulting to warn.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "silent", "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// New wraps a zerolog logger. Mostly useful in tests.
func New(z zerolog.Logger) Logger {
	return &zlog{z: z}
}

// Default returns the global logger.
func Default() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zlog{z: base}
}

func Debug(msg string, keysAndValues ...interface{}) { Default().Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...interface{})  { Default().Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...interface{})  { Default().Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...interface{}) { Default().Error(msg, keysAndValues...) }

// WithField returns a child of the global logger carrying one field.
func WithField(key string, value interface{}) Logger {
	return Default().WithField(key, value)
}

// WithFields returns a child of the global logger carrying the given fields.
func WithFields(fields map[string]interface{}) Logger {
	return Default().WithFields(fields)
}

type zlog struct {
	z zerolog.Logger
}

func (l *zlog) Debug(msg string, keysAndValues ...interface{}) {
	emit(l.z.Debug(), msg, keysAndValues)
}

func (l *zlog) Info(msg string, keysAndValues ...interface{}) {
	emit(l.z.Info(), msg, keysAndValues)
}

func (l *zlog) Warn(msg string, keysAndValues ...interface{}) {
	emit(l.z.Warn(), msg, keysAndValues)
}

func (l *zlog) Error(msg string, keysAndValues ...interface{}) {
	emit(l.z.Error(), msg, keysAndValues)
}

func (l *zlog) WithField(key string, value interface{}) Logger {
	return &zlog{z: l.z.With().Interface(key, value).Logger()}
}

func (l *zlog) WithFields(fields map[string]interface{}) Logger {
	return &zlog{z: l.z.With().Fields(fields).Logger()}
}

func emit(e *zerolog.Event, msg string, keysAndValues []interface{}) {
	if e == nil {
		return
	}
	if len(keysAndValues)%2 != 0 {
		keysAndValues = append(keysAndValues, "(MISSING)")
	}
	if len(keysAndValues) > 0 {
		e = e.Fields(keysAndValues)
	}
	e.Msg(msg)
}
