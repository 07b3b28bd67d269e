// ABOUTME: Tests for logger construction and the colorized handler
// ABOUTME: Color is disabled so output can be matched as plain text

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestColorHandler_FormatsAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Options{Level: "debug"}, &buf)

	logger.With("component", "router").WithGroup("nav").Debug("moved", "to", "/files")

	out := buf.String()
	assert.Contains(t, out, "DBG moved")
	assert.Contains(t, out, " component=router")
	assert.Contains(t, out, " nav.to=/files")
}

func TestColorHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Options{Level: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN shown")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Options{Level: "info", Format: "json"}, &buf)

	logger.Info("hello", "n", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, float64(3), rec["n"])
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "docreview.log")
	logger, closer := New(Options{Level: "info", Format: "json", File: path})

	logger.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}
