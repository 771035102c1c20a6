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
		{" WARN ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestZapLogger_KeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var l Logger = &ZapLogger{logger: zap.New(core).Sugar()}

	l.With("hotel", "h1").Warn("row skipped", "row", 4)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "row skipped", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "h1", fields["hotel"])
	assert.EqualValues(t, 4, fields["row"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Info("ignored", "k", "v")
	})
}
