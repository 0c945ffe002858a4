package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		level    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := NewLogrusAdapter(tt.level, "text")
			assert.Equal(t, tt.expected, l.Level())
		})
	}
}

func TestLogrusAdapter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogrusAdapter("debug", "json")
	l.SetOutput(&buf)

	l.WithField(FieldScanID, "abc").
		WithError(errors.New("boom")).
		Info("parsed statement", F(FieldCount, 2), F(FieldLocale, "no"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "parsed statement", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc", entry[FieldScanID])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, float64(2), entry[FieldCount])
	assert.Equal(t, "no", entry[FieldLocale])
}

func TestLogrusAdapter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogrusAdapter("warn", "text")
	l.SetOutput(&buf)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.WithFields(F(FieldProvider, "vision")).Warn("provider failed")
	assert.Contains(t, buf.String(), "provider failed")
	assert.Contains(t, buf.String(), "provider=vision")
}

func TestNop(t *testing.T) {
	l := Nop().WithField("k", "v").WithError(errors.New("x")).WithFields(F("a", 1))
	assert.NotPanics(t, func() {
		l.Debug("a")
		l.Info("b")
		l.Warn("c")
		l.Error("d")
	})
}
