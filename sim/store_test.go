package sim

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dennis-eisen/ptzctrl/ptz"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "buttons.db")

	s, err := OpenStore(ctx, path, smallLayout())
	require.NoError(t, err)
	name := "Wide"
	ok, err := s.Update(ctx, patch(1, 0, &name, nil))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, s.Close())

	// A bigger layout adds rows without touching existing ones.
	bigger := smallLayout()
	bigger.Cameras[1].Positions = 3
	s, err = OpenStore(ctx, path, bigger)
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, ptz.ButtonRow{Cam: 1, Pos: 0, Name: "Wide", BtnClass: DefaultStyle}, rows[2])
	assert.Equal(t, 2, rows[4].Pos)
}

func TestStoreUpdatePartial(t *testing.T) {
	ctx := context.Background()
	s, err := OpenStore(ctx, ":memory:", smallLayout())
	require.NoError(t, err)
	defer s.Close()

	class := "btn-info"
	_, err = s.Update(ctx, patch(0, 0, nil, &class))
	require.NoError(t, err)
	name := "Lectern"
	_, err = s.Update(ctx, patch(0, 0, &name, nil))
	require.NoError(t, err)

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, ptz.ButtonRow{Cam: 0, Pos: 0, Name: "Lectern", BtnClass: "btn-info"}, rows[0])

	ok, err := s.Update(ctx, patch(7, 0, &name, nil))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Update(ctx, ptz.ButtonPatch{Name: &name})
	assert.ErrorIs(t, err, ptz.ErrMalformed)
	assert.False(t, ok)

	require.NoError(t, s.Reset(ctx))
	rows, err = s.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, ptz.ButtonRow{Cam: 0, Pos: 0, Name: "", BtnClass: DefaultStyle}, rows[0])
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[camera]]
address = "cam-a"
positions = 4

[[camera]]
address = "cam-b"
positions = 2
`), 0o644))

	l, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cam-a", "cam-b"}, l.Addresses())
	assert.Equal(t, 4, l.Cameras[0].Positions)

	require.NoError(t, os.WriteFile(path, []byte("# nothing\n"), 0o644))
	_, err = LoadLayout(path)
	assert.Error(t, err)
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	require.Len(t, l.Cameras, 3)
	for _, c := range l.Cameras {
		assert.Equal(t, 8, c.Positions)
	}
	assert.NoError(t, l.Validate())
}
