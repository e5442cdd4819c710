package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrap_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := Wrap(zap.New(core)).With(zap.String("component", "restock"))

	log.Debug("dropped")
	log.Info("sweep finished", zap.Int("updated", 2))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sweep finished", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "restock", ctx["component"])
	assert.EqualValues(t, 2, ctx["updated"])
}

func TestNewZapLogger_UnknownLevelFallsBack(t *testing.T) {
	log := NewZapLogger(&ZapLoggerConfig{Level: "loud", Encoding: "json"})
	require.NotNil(t, log)
	log.Info("still works")
}
