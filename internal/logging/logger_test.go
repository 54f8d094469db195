package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("not-a-level"))
}

func TestNew_TextFormatWritesLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf})
	logger.Info("handle created", "mode", "cloud")

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "handle created")
	assert.Contains(t, out, "mode=cloud")
}

func TestNew_TextFormatNeverColorsANonTerminalWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})
	logger.Info("plain")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestNew_LevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})
	logger.Info("should not appear")
	logger.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestNew_JSONFormatProducesValidJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf})
	logger.Info("request failed", "op", "Get", "code", "RequestTimeout")

	line := strings.TrimSpace(buf.String())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "request failed", decoded["msg"])
	assert.Equal(t, "Get", decoded["op"])
}

func TestDefault_WritesToStderrAtInfoLevel(t *testing.T) {
	logger := Default()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestColorTextHandler_WithAttrsAppendsToEveryRecord(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false)
	logger := slog.New(h).With("request_id", "abc-123")
	logger.Info("sent")

	assert.Contains(t, buf.String(), "request_id=abc-123")
}

func TestColorTextHandler_UsesColorCodesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, true)
	slog.New(h).Error("boom")
	assert.Contains(t, buf.String(), colorRed)
}
