package telemetry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace": zerolog.TraceLevel,
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.WarnLevel,
		"loud":  zerolog.WarnLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), "level %q", in)
	}
}

func TestLogger_WithTraceWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LoggingConfig{Level: "info", Format: "json"}, &buf)

	logger.WithTrace(context.Background()).Info("no span")

	assert.Contains(t, buf.String(), `"message":"no span"`)
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Debugf("hidden %d", 1)
	logger.Info("hidden")
	logger.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.log")
	logger, err := NewLogger(LoggingConfig{Enabled: true, Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.WithOperation("orders.save").Warn("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"operation":"orders.save"`)
}

func TestNewLogger_Disabled(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Enabled: false, Output: "/nonexistent/dir/diag.log"})
	require.NoError(t, err)
	assert.NotPanics(t, func() { logger.Error("dropped") })
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Warn("dropped") })
}
