package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zouxin96/vibeStock/internal/layout"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLayoutInitAndShow(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "layout", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote dashboard_layout.yaml")

	instances, err := layout.Load("dashboard_layout.yaml")
	require.NoError(t, err)
	assert.Equal(t, layout.Default(), instances)

	_, err = run(t, "layout", "init")
	require.ErrorIs(t, err, errLayoutExists)

	_, err = run(t, "layout", "init", "--force")
	require.NoError(t, err)

	out, err = run(t, "layout", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: watchlist-widget")
	assert.Contains(t, out, "widget_id: limit_rank")
}

func TestLayoutShowUsesConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := "layout:\n  path: custom.yaml\n"
	require.NoError(t, os.WriteFile("vibestock.yaml", []byte(cfg), 0o644))
	require.NoError(t, layout.Save("custom.yaml", []layout.Instance{
		{Kind: layout.KindSectorPie, WidgetID: "only_pie"},
	}))

	out, err := run(t, "layout", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "only_pie")
	assert.NotContains(t, out, "watchlist")
}

func TestWidgetsListsKinds(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "widgets")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, lines, layout.KindWatchlist)
	assert.Contains(t, lines, layout.KindAkshareMonitor)
}

func TestMissingConfigFileFails(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "--config", "nope.yaml", "widgets")
	require.Error(t, err)
}
