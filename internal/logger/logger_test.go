package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"trace", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"silent", zerolog.Disabled},
		{"bogus", zerolog.WarnLevel},
		{"", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, "warn", LevelFromFlags(false, false))
	assert.Equal(t, "info", LevelFromFlags(true, false))
	assert.Equal(t, "debug", LevelFromFlags(false, true))
	assert.Equal(t, "debug", LevelFromFlags(true, true))
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(Config{Level: "warn", Format: "console"})

	Info("Schema migrated", "changes", 2)
	Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"message":"Schema migrated"`)
	assert.Contains(t, out, `"changes":2`)
	assert.NotContains(t, out, "hidden")
}

func TestComponentLoggers(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(Config{Level: "warn", Format: "console"})

	DB().Warn("Insert rejected", "table", "movies", "error", errors.New("boom"))
	Migration().WithFields(map[string]interface{}{"table": "movies"}).Debug("Inspecting")
	ConfigLoader().Debug("Loaded config file", "path", "cinelog.yaml")
	Catalog().Info("Created user", "name", "ana")
	CLI().Info("Movie added", "title", "Heat")

	out := buf.String()
	assert.Contains(t, out, `"component":"db"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"component":"migration"`)
	assert.Contains(t, out, `"table":"movies"`)
	assert.Contains(t, out, `"component":"config"`)
	assert.Contains(t, out, `"path":"cinelog.yaml"`)
	assert.Contains(t, out, `"component":"catalog"`)
	assert.Contains(t, out, `"component":"cli"`)
}

func TestOddKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))

	l.Info("odd", "dangling")

	assert.Contains(t, buf.String(), `"dangling":"(MISSING)"`)
}
