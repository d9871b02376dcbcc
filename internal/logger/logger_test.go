package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewWithSink_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newWithSink(zapcore.WarnLevel, zapcore.AddSync(&buf))

	log.Info("hidden")
	log.Warn("Chunk load failed", zap.Int("chunk_first_id", 11))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN | ")
	assert.Contains(t, out, "Chunk load failed")
	assert.Contains(t, out, `"chunk_first_id": 11`)
}

func TestNew_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "loader.log")

	log, err := New("debug", path)
	require.NoError(t, err)
	log.Debug("Person not found", zap.Int("person_id", 17))
	require.NoError(t, log.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "DEBUG")
	assert.Contains(t, string(b), "Person not found")
}

func TestNew_Stdout(t *testing.T) {
	log, err := New("info", "")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
