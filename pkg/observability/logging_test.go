package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{name: "debug level", input: "debug", expected: slog.LevelDebug},
		{name: "info level", input: "info", expected: slog.LevelInfo},
		{name: "warn level", input: "warn", expected: slog.LevelWarn},
		{name: "warning level", input: "warning", expected: slog.LevelWarn},
		{name: "error level", input: "error", expected: slog.LevelError},
		{name: "uppercase DEBUG", input: "DEBUG", expected: slog.LevelDebug},
		{name: "mixed case Info", input: "Info", expected: slog.LevelInfo},
		{name: "empty string defaults to info", input: "", expected: slog.LevelInfo},
		{name: "unknown level defaults to info", input: "xyzzy", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInitLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Output: &buf, Level: "debug", Format: "json", ServiceName: "credit-risk-service"})
	require.NotNil(t, logger)

	logger.Debug("assessment completed", "category", "HIGH")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "assessment completed", record["msg"])
	assert.Equal(t, "HIGH", record["category"])
	assert.Equal(t, "credit-risk-service", record["service"])
}

func TestInitLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Output: &buf, Level: "warn", Format: "text"})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitLoggerSetsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Output: &buf, Level: "info", Format: "json"})

	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}
