package logging

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogging(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		_ = Initialize(t.TempDir(), Options{})
	})
}

func TestInitialize_DisabledWritesNothing(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, Options{DebugMode: false}))
	Get(CategorySession).Info("should not appear")

	assert.Empty(t, Path())
	_, err := os.Stat(dir + "/logs")
	assert.True(t, os.IsNotExist(err), "logs dir must not be created in production mode")
	assert.False(t, IsCategoryEnabled(CategorySession))
}

func TestInitialize_DebugModeWritesJSON(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, Options{DebugMode: true, Level: "debug"}))
	Get(CategoryAPI).Info("query sent: backend=%s", "gemini")
	StoreDebug("saved %d entries", 3)
	Sync()

	data, err := os.ReadFile(Path())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"logger":"api"`)
	assert.Contains(t, content, "query sent: backend=gemini")
	assert.Contains(t, content, "saved 3 entries")
}

func TestCategoryFilter(t *testing.T) {
	resetLogging(t)
	require.NoError(t, Initialize(t.TempDir(), Options{
		DebugMode:  true,
		Categories: map[string]bool{"store": false, "api": true},
	}))

	assert.False(t, IsCategoryEnabled(CategoryStore))
	assert.True(t, IsCategoryEnabled(CategoryAPI))
	assert.True(t, IsCategoryEnabled(CategoryBoot), "unlisted categories default to enabled")
}

func TestSetBase_RoutesAllCategories(t *testing.T) {
	resetLogging(t)
	core, logs := observer.New(zapcore.DebugLevel)
	SetBase(zap.New(core))

	Proxy("request %s", "abc")
	Get(CategorySession).With("session_id", "s1").Warn("slow")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "proxy", entries[0].LoggerName)
	assert.Equal(t, "request abc", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "s1", entries[1].ContextMap()["session_id"])
}

func TestTimer_StopWithThreshold(t *testing.T) {
	resetLogging(t)
	core, logs := observer.New(zapcore.DebugLevel)
	SetBase(zap.New(core))

	timer := StartTimer(CategoryAPI, "Query")
	time.Sleep(2 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Nanosecond)

	assert.GreaterOrEqual(t, elapsed, 2*time.Millisecond)
	require.Equal(t, 1, logs.Len())
	assert.True(t, strings.HasPrefix(logs.All()[0].Message, "Query took"))
}

func TestNoopLoggerIsSafe(t *testing.T) {
	var l Logger
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	assert.Same(t, &l, l.With("k", "v"))
}
