package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestWithAttachesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core)).With(String("task_id", "abc"))

	l.Warn("page failed", Int("status", 404))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "page failed", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "abc", ctx["task_id"])
	assert.EqualValues(t, 404, ctx["status"])
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Info("ignored")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.NoError(t, l.Sync())
}
