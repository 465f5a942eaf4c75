package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewWithCore(core)

	l.Info("QA", "Answer produced", map[string]interface{}{"citations": 2})
	l.Error("QA", "Upstream failed", map[string]interface{}{"error": "boom"})
	l.Debug("QA", "no details", nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "QA", ctx["module"])
	assert.Equal(t, map[string]interface{}{"citations": 2}, ctx["details"])

	assert.Equal(t, "boom", entries[1].ContextMap()["error_ref"])
	assert.Equal(t, map[string]interface{}{}, entries[2].ContextMap()["details"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Warn("X", "ignored", nil)
	assert.NoError(t, l.Sync())
}
