package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:8000/ws", cfg.Socket.URL)
	assert.Equal(t, 2*time.Second, cfg.Widgets.RetryDelay)
	assert.Equal(t, 8, cfg.Widgets.PageSize)
	assert.Equal(t, DefaultLayoutPath, cfg.Layout.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
socket:
  url: ws://feed.local:9000/ws
  reconnect_delay: 5s
  drop_frames: true
widgets:
  page_size: 12
log:
  level: debug
feed:
  interval: 500ms
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://feed.local:9000/ws", cfg.Socket.URL)
	assert.Equal(t, 5*time.Second, cfg.Socket.ReconnectDelay)
	assert.True(t, cfg.Socket.DropFrames)
	assert.Equal(t, 12, cfg.Widgets.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Feed.Interval)
	assert.Equal(t, path, cfg.File)

	// Untouched keys keep their defaults
	assert.Equal(t, 2*time.Second, cfg.Widgets.RetryDelay)
}

func TestLoadSearchesWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vibestock.yaml"), []byte("layout:\n  path: my_layout.yaml\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "my_layout.yaml", cfg.Layout.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vibestock.yaml"), []byte("widgets:\n  retry_delay: 1s\n"), 0o644))
	t.Setenv("VIBESTOCK_WIDGETS_RETRY_DELAY", "3s")
	t.Setenv("VIBESTOCK_SOCKET_URL", "ws://env:1/ws")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Widgets.RetryDelay)
	assert.Equal(t, "ws://env:1/ws", cfg.Socket.URL)
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VIBESTOCK_LOG_LEVEL=warn\n"), 0o644))
	// godotenv sets the variable for the process; make sure it is cleared afterwards
	t.Setenv("VIBESTOCK_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("VIBESTOCK_LOG_LEVEL"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}
