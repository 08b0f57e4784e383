package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LevelInfo, FormatJSON, &buf)

	logger.WithField("user_id", "u-1").
		WithFields(map[string]interface{}{"entries": 8}).
		WithError(errors.New("boom")).
		Info("emissions loaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "emissions loaded", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "u-1", entry["user_id"])
	assert.Equal(t, float64(8), entry["entries"])
	assert.Equal(t, "boom", entry["error"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LevelWarn, FormatJSON, &buf)

	logger.Info("hidden")
	logger.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	logger.Warnf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestLoggerChildDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLoggerWithOutput(LevelInfo, FormatJSON, &buf)
	_ = parent.WithField("child", true)

	parent.Info("parent only")
	assert.NotContains(t, buf.String(), "child")
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LevelInfo, FormatText, &buf)
	logger.WithField("view", "dashboard").Info("view changed")

	out := buf.String()
	assert.True(t, strings.Contains(out, "INFO"), out)
	assert.Contains(t, out, "view changed")
	assert.Contains(t, out, "dashboard")
}

func TestSetOutputKeepsFields(t *testing.T) {
	var first, second bytes.Buffer
	logger := NewLoggerWithOutput(LevelInfo, FormatJSON, &first).WithField("component", "ledger")
	logger.SetOutput(&second)
	logger.Info("moved")

	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "ledger")
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LevelInfo, FormatJSON, &buf)
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}

	assert.Equal(t, FormatText, ParseLogFormat("console"))
	assert.Equal(t, FormatJSON, ParseLogFormat("xml"))
}
