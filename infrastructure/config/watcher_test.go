package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/konstantinWDK/github-light-calendar/infrastructure/config"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "rate_limit_per_minute: 60\n")
	current, err := config.LoadFrom(path)
	require.NoError(t, err)

	w, err := config.NewWatcher(path, current, zap.NewNop())
	require.NoError(t, err)
	changes := make(chan *config.Config, 1)
	w.OnChange(func(_, next *config.Config) {
		select {
		case changes <- next:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	// Act
	writeConfig(t, path, "rate_limit_per_minute: 5\nlog_level: debug\n")

	// Assert
	select {
	case next := <-changes:
		assert.Equal(t, 5, next.RateLimitPerMinute)
		assert.Equal(t, "debug", next.LogLevel)
		assert.Same(t, next, w.Current())
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}
}

func TestWatcher_KeepsCurrentOnInvalidFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "rate_limit_per_minute: 60\n")
	current, err := config.LoadFrom(path)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	w, err := config.NewWatcher(path, current, zap.New(core))
	require.NoError(t, err)
	called := false
	w.OnChange(func(_, _ *config.Config) { called = true })
	w.Start()

	// Act
	writeConfig(t, path, "cache_backend: floppy\n")

	// Assert
	require.Eventually(t, func() bool {
		return logs.FilterMessage("Invalid configuration, keeping current").Len() > 0
	}, 5*time.Second, 10*time.Millisecond)
	w.Stop()
	assert.False(t, called)
	assert.Same(t, current, w.Current())
}

func TestRestartRequired(t *testing.T) {
	prev := config.Default()
	next := *prev
	next.LogLevel = "debug"
	next.RateLimitPerMinute = 10
	next.CacheBackend = config.CacheBackendMemory

	assert.Equal(t, []string{"cache_backend"}, config.RestartRequired(prev, &next))

	next.RateLimitPerMinute = 0
	assert.Equal(t, []string{"cache_backend", "rate_limit_per_minute"}, config.RestartRequired(prev, &next))
}
