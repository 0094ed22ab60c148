package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileDefaultsOff(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prefs.yaml"), nil)
	require.NoError(t, err)
	assert.False(t, s.Protected())
	assert.Equal(t, "x", s.Get("nothing", "x"))
}

func TestProtectionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetProtected(true))
	assert.True(t, s.Protected())

	again, err := Open(path, nil)
	require.NoError(t, err)
	assert.True(t, again.Protected())
	assert.Equal(t, On, again.Get(KeyProtection, Off))

	require.NoError(t, again.SetProtected(false))
	third, err := Open(path, nil)
	require.NoError(t, err)
	assert.False(t, third.Protected())
}

func TestGarbageValueReadsOff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("on_air_change_protection: maybe\n"), 0o644))

	s, err := Open(path, nil)
	require.NoError(t, err)
	assert.False(t, s.Protected())
}

func TestUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[not, a, map"), 0o644))

	_, err := Open(path, nil)
	assert.Error(t, err)
}
