package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"ERROR":  LogLevelError,
		"warn":   LogLevelWarn,
		"":       LogLevelInfo,
		"bogus":  LogLevelInfo,
		" DEBUG": LogLevelDebug,
		"TRACE":  LogLevelTrace,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
	assert.Equal(t, "TRACE", LogLevelTrace.String())
}

func TestLogger_GatesByLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithZap(LogLevelInfo, zap.New(core))

	l.Error("e %d", 1)
	l.Warn("w")
	l.Info("i")
	l.Debug("d")
	l.Trace("t")

	var got []string
	for _, e := range logs.All() {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"e 1", "w", "i"}, got)
}

func TestLogger_TraceAndWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithZap(LogLevelTrace, zap.New(core)).With("run", "abc")

	l.Trace("deep %s", "detail")
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "deep detail", entries[0].Message)
		fields := entries[0].ContextMap()
		assert.Equal(t, true, fields["trace"])
		assert.Equal(t, "abc", fields["run"])
	}
}
