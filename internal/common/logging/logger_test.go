package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, ErrorLevel, ParseLevel("Error"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}

func TestDefaultLogConfig(t *testing.T) {
	config := DefaultLogConfig()

	assert.Nil(t, config.Output)
	assert.Equal(t, time.RFC3339, config.TimeFormat)
	assert.Equal(t, "", config.Prefix)
}

func TestNewZapLogger_WritesAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{
		Level:  WarnLevel,
		Output: &buf,
	})
	assert.NoError(t, err)

	logger.Info("should be suppressed")
	logger.Warn("rule deactivation failed", String("rule_id", "r1"))

	out := buf.String()
	assert.NotContains(t, out, "should be suppressed")
	assert.Contains(t, out, "rule deactivation failed")
	assert.Contains(t, out, "r1")
}

func TestZapAdapter_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{Level: DebugLevel, Output: &buf})
	assert.NoError(t, err)

	logger.Error("gateway reply failed", errors.New("connection reset"),
		String("sender", "s1"))

	out := buf.String()
	assert.Contains(t, out, "gateway reply failed")
	assert.Contains(t, out, "connection reset")
}

func TestZapAdapter_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{Level: DebugLevel, Output: &buf})
	assert.NoError(t, err)

	child := logger.WithFields(String("component", "routing"))
	child.Info("engine started")

	assert.Contains(t, buf.String(), "routing")
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{Level: DebugLevel, Output: &buf})
	assert.NoError(t, err)

	SetGlobalLogger(logger)
	defer SetGlobalLogger(NewDefaultLogger())

	Info("hello", Int("count", 3))
	assert.Contains(t, buf.String(), "hello")
}

func TestFieldConstructors(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		field Field
		key   string
	}{
		{String("user_id", "u1"), "user_id"},
		{Int("count", 7), "count"},
		{Int64("removed", 42), "removed"},
		{Bool("redis", true), "redis"},
		{Duration("elapsed", time.Second), "elapsed"},
		{Time("cutoff", now), "cutoff"},
		{Err(errors.New("boom")), "error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.key, tt.field.Key)
		assert.NotNil(t, tt.field.Value)
	}

	assert.Equal(t, "2026-08-01T12:00:00Z", Time("cutoff", now).Value)
}
