package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:6789", cfg.Addr)
	assert.False(t, cfg.Reconnect)

	km := cfg.ToKeyMap()
	assert.Equal(t, []string{"enter", " "}, km.Activate.Keys())
	assert.Equal(t, "space", keyLabel(" "))
	assert.True(t, km.SaveAndSet.Enabled())
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptzctrl.json")
	data := `{"addr": "studio:6789", "keys": {"quit": [], "toggle_debug": ["f2"]}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "studio:6789", cfg.Addr)
	assert.Equal(t, "63", cfg.Accent)

	km := cfg.ToKeyMap()
	assert.False(t, km.Quit.Enabled())
	assert.Equal(t, []string{"f2"}, km.ToggleDebug.Keys())
	assert.Equal(t, []string{"ctrl+p", ":"}, km.CommandPalette.Keys())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "parse")
}
