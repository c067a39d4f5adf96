package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogFileWritesTextLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hgfsd.log")
	require.NoError(t, InitLogFile(path, "text", "INFO"))
	defer Close()

	Infof("hello %s", "world")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello world")
}

func TestInitLogFileWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hgfsd.log")
	require.NoError(t, InitLogFile(path, "json", "INFO"))
	defer Close()

	Errorf("disk is on fire")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message"`)
	assert.Contains(t, string(data), "disk is on fire")
}

func TestInitLogFileRejectsUnwritablePath(t *testing.T) {
	err := InitLogFile(filepath.Join(t.TempDir(), "missing-dir", "hgfsd.log"), "text", "INFO")
	assert.Error(t, err)
}

func TestHandlerRespectsConfiguredSeverity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hgfsd.log")
	require.NoError(t, InitLogFile(path, "text", "WARNING"))
	defer Close()

	h := Handler()
	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))
}

func TestStructuredLoggerRoutesThroughHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hgfsd.log")
	require.NoError(t, InitLogFile(path, "json", "DEBUG"))
	defer Close()

	l := StructuredLogger("dispatch: ", slog.LevelInfo)
	l.Print("request handled")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "request handled")
}

func TestStructuredLoggerDropsLinesBelowHandlerLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hgfsd.log")
	require.NoError(t, InitLogFile(path, "text", "ERROR"))
	defer Close()

	l := StructuredLogger("", slog.LevelInfo)
	l.Print("should be suppressed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "should be suppressed"))
}
