package services

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLoggerStructured(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLogger("kairos", &buf, slog.LevelInfo, true)

	logger.Debug("hidden")
	logger.Info("turn completed", "conversation_id", 4)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "turn completed", entry["msg"])
	assert.Equal(t, "kairos", entry["service"])
	assert.Equal(t, float64(4), entry["conversation_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerSilentInTests(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	_, ok := NewLogger("kairos", "DEBUG").(*NoOpLogger)
	assert.True(t, ok)
}
