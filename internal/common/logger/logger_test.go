package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"action": "fraud-detection"}).
		Error("action failed", map[string]interface{}{
			"code":  "INVOCATION_FAILED",
			"cause": errors.New("upstream closed"),
		})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "action failed", entries[0].Message)
		assert.Equal(t, "fraud-detection", ctx["action"])
		assert.Equal(t, "INVOCATION_FAILED", ctx["code"])
		assert.Equal(t, "upstream closed", ctx["cause"])
	}
}

func TestZapWrapper_WithError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core)).WithError(errors.New("boom"))

	log.Info("with error", nil)
	log.Debug("filtered out", nil)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	}
}

func TestConstructors(t *testing.T) {
	assert.NotNil(t, NewStructured("debug", "json"))
	assert.NotNil(t, NewStructured("info", "console", "stderr"))
	assert.NotNil(t, NewNoOpLogger())
	assert.NotNil(t, NewTestLogger(t))
	assert.Nil(t, mapToZapFields(nil))
}
