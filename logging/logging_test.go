package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSessionLogPath_UnderHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := SessionLogPath(time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC))
	assert.Equal(t, filepath.Join(home, ".jasmin-lsp", "jasmin-lsp-20260305-143000.log"), got)

	_, err := os.Stat(filepath.Join(home, ".jasmin-lsp"))
	assert.NoError(t, err)
}

func TestFileSink_CreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.log")

	core, closeFn, err := fileSink(zapcore.InfoLevel, path)
	require.NoError(t, err)
	defer closeFn()

	require.NotNil(t, core)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestFileSink_FallsBackToStderrWhenPathEmpty(t *testing.T) {
	core, closeFn, err := fileSink(zapcore.InfoLevel, "")
	require.NoError(t, err)
	defer closeFn()
	assert.NotNil(t, core)
}

func TestMessageType_MapsZapLevelsToLSPSeverities(t *testing.T) {
	assert.Equal(t, int32(4), int32(messageType(zapcore.DebugLevel)))
	assert.Equal(t, int32(2), int32(messageType(zapcore.WarnLevel)))
	assert.Equal(t, int32(1), int32(messageType(zapcore.ErrorLevel)))
	assert.Equal(t, int32(3), int32(messageType(zapcore.InfoLevel)))
}
