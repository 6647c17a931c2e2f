package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestGetReturnsSameInstanceOnSubsequentCalls(t *testing.T) {
	logger1 := Get(Options{})
	logger2 := Get(Options{Level: -1, Stderr: true})
	require.NotNil(t, logger1)
	require.Same(t, logger1, logger2, "Get should ignore options after the first call")
}

func TestGetReturnsNoopLoggerIfGlobalLoggerNil(t *testing.T) {
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	require.Same(t, &defaultNoopLogger, Get(Options{}))
}

func TestWithLoggerAddsAndReplaces(t *testing.T) {
	ctx := context.Background()
	first := Get(Options{})
	ctxWithLogger := WithLogger(ctx, first)
	require.Same(t, first, ctxWithLogger.Value(loggerContextKey{}))

	// Same pointer keeps the context.
	require.True(t, ctxWithLogger == WithLogger(ctxWithLogger, first))

	other := logr.Discard()
	replaced := WithLogger(ctxWithLogger, &other)
	require.Same(t, &other, replaced.Value(loggerContextKey{}))
}

func TestFromContextFallbacks(t *testing.T) {
	global := Get(Options{})
	require.Same(t, global, FromContext(context.Background()))

	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()
	require.Same(t, &defaultNoopLogger, FromContext(context.Background()))
}

func TestSyncDoesNotPanicWithoutLogger(t *testing.T) {
	origZap, origCloser := globalZapLogger, globalCloser
	globalZapLogger, globalCloser = nil, nil
	defer func() { globalZapLogger, globalCloser = origZap, origCloser }()

	require.NotPanics(t, Sync)
}

func TestNewWriteSyncerFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nvtree.log")
	sink, closer := newWriteSyncer(Options{File: path, MaxSizeMB: 1})
	require.NotNil(t, closer)

	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, zapcore.DebugLevel)
	lgr := zapr.NewLogger(zap.New(core))
	lgr.Info("directory changed", "path", "/tmp")
	require.NoError(t, sink.Sync())
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `"path":"/tmp"`), "log file content: %s", data)
}

func TestNewWriteSyncerDiscardAndStderr(t *testing.T) {
	_, closer := newWriteSyncer(Options{})
	require.Nil(t, closer)
	_, closer = newWriteSyncer(Options{Stderr: true})
	require.Nil(t, closer)
}

func TestWithValuesReturnsNewLogger(t *testing.T) {
	lgr := Get(Options{})
	newLogger := WithValues(lgr, "key", "value")
	require.NotNil(t, newLogger)
	require.NotSame(t, lgr, newLogger)
}

func TestWithValuesHandlesNilLogger(t *testing.T) {
	var lgr *logr.Logger
	require.Panics(t, func() { _ = WithValues(lgr, "key", "value") })
}

func TestComponentNamesLogger(t *testing.T) {
	lgr := logr.Discard()
	require.NotPanics(t, func() {
		c := Component(&lgr, "panel")
		c.V(1).Info("named")
	})
}
