package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: LevelInfo, Format: format})
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_EmptyOutputPathsRejected(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestZapLogger_FieldsAreTyped(t *testing.T) {
	l, logs := newObservedLogger()

	l.Info("layer rendered",
		LayerKind("clusters"),
		Format("geojson"),
		Int("polylines", 12),
		Duration("took", 3*time.Millisecond),
		Err(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "layer rendered", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "clusters", ctx["layer_kind"])
	assert.Equal(t, "geojson", ctx["format"])
	assert.EqualValues(t, 12, ctx["polylines"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger()
	child := l.Named("http").With(RequestID("abc"))
	child.Warn("slow request")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http", entry.LoggerName)
	assert.Equal(t, "abc", entry.ContextMap()["request_id"])
}

func TestZapLogger_SetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo})
	require.NoError(t, err)
	zl := l.(*zapLogger)
	assert.False(t, zl.z.Core().Enabled(zapcore.DebugLevel))

	l.SetLevel(LevelDebug)
	assert.True(t, zl.z.Core().Enabled(zapcore.DebugLevel))

	child := l.Named("child").(*zapLogger)
	l.SetLevel(LevelError)
	assert.False(t, child.z.Core().Enabled(zapcore.WarnLevel), "children share the atomic level")
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	l.SetLevel(LevelDebug)
	assert.NoError(t, l.Sync())
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("n"))
}

func TestDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	l, _ := newObservedLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default(), "nil must not replace the default")
}

//Personal.AI order the ending
