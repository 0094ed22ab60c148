package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func stylep(s Style) *Style { return &s }

// twoCameras is a 2-camera rig with 3 + 2 presets.
func twoCameras(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	err := s.ReplaceAll(
		[]string{"10.0.0.11", "10.0.0.12"},
		[]Button{
			{Camera: 0, Position: 0, Name: "Altar", Style: StylePrimary},
			{Camera: 0, Position: 1, Name: "Pulpit", Style: StyleSecondary},
			{Camera: 0, Position: 2, Name: "Choir", Style: StyleSecondary},
			{Camera: 1, Position: 0, Name: "Wide", Style: StyleDanger},
			{Camera: 1, Position: 1, Name: "Organ", Style: StyleInfo},
		},
		[]TallyState{TallyPreview, TallyIdle},
	)
	require.NoError(t, err)
	return s
}

func TestReplaceAllResync(t *testing.T) {
	s := twoCameras(t)

	cams := s.Cameras()
	require.Len(t, cams, 2)
	assert.Equal(t, Camera{Index: 0, Address: "10.0.0.11", Tally: TallyPreview}, cams[0])
	assert.Equal(t, Camera{Index: 1, Address: "10.0.0.12", Tally: TallyIdle}, cams[1])

	assert.Equal(t, 5, s.Len())
	for _, b := range s.Buttons() {
		got, ok := s.Button(b.Key())
		require.True(t, ok, b.Key().String())
		assert.Equal(t, b, got)
	}

	groups := s.Groups()
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Buttons, 3)
	assert.Len(t, groups[1].Buttons, 2)
	assert.Equal(t, TallyPreview, groups[0].Camera.Tally)
}

func TestReplaceAllReplacesEverything(t *testing.T) {
	s := twoCameras(t)
	err := s.ReplaceAll([]string{"cam"}, []Button{{Camera: 0, Position: 7, Name: "Only"}}, []TallyState{TallyProgram})
	require.NoError(t, err)

	assert.Equal(t, 1, s.Len())
	_, ok := s.Button(Key{Camera: 1, Position: 0})
	assert.False(t, ok)
	tally, ok := s.Tally(0)
	require.True(t, ok)
	assert.Equal(t, TallyProgram, tally)
}

func TestReplaceAllRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		addrs   []string
		buttons []Button
		tally   []TallyState
		want    error
	}{
		{
			name:  "tally too short",
			addrs: []string{"a", "b"},
			tally: []TallyState{TallyIdle},
			want:  ErrTallyLength,
		},
		{
			name:  "unknown tally value",
			addrs: []string{"a"},
			tally: []TallyState{7},
			want:  ErrInvalidTally,
		},
		{
			name:    "camera out of range",
			addrs:   []string{"a"},
			buttons: []Button{{Camera: 1, Position: 0}},
			tally:   []TallyState{TallyIdle},
			want:    ErrUnknownCamera,
		},
		{
			name:    "interleaved groups",
			addrs:   []string{"a", "b"},
			buttons: []Button{{Camera: 0, Position: 0}, {Camera: 1, Position: 0}, {Camera: 0, Position: 1}},
			tally:   []TallyState{TallyIdle, TallyIdle},
			want:    ErrNotContiguous,
		},
		{
			name:    "duplicate key",
			addrs:   []string{"a"},
			buttons: []Button{{Camera: 0, Position: 3}, {Camera: 0, Position: 3}},
			tally:   []TallyState{TallyIdle},
			want:    ErrDuplicateButton,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := twoCameras(t)
			before := s.Buttons()

			err := s.ReplaceAll(tc.addrs, tc.buttons, tc.tally)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, s.Buttons(), "store must be untouched")
			assert.Len(t, s.Cameras(), 2)
		})
	}
}

func TestPatchNameKeepsStyle(t *testing.T) {
	s := twoCameras(t)
	b, err := s.PatchButton(Patch{Key: Key{Camera: 0, Position: 1}, Name: strp("Lectern")})
	require.NoError(t, err)
	assert.Equal(t, "Lectern", b.Name)
	assert.Equal(t, StyleSecondary, b.Style)

	stored, _ := s.Button(Key{Camera: 0, Position: 1})
	assert.Equal(t, b, stored)
}

func TestPatchStyleKeepsName(t *testing.T) {
	s := twoCameras(t)
	b, err := s.PatchButton(Patch{Key: Key{Camera: 1, Position: 1}, Style: stylep(StyleWarning)})
	require.NoError(t, err)
	assert.Equal(t, "Organ", b.Name)
	assert.Equal(t, StyleWarning, b.Style)
}

func TestPatchUnknownIsNotInserted(t *testing.T) {
	s := twoCameras(t)
	_, err := s.PatchButton(Patch{Key: Key{Camera: 1, Position: 9}, Name: strp("Ghost")})
	require.ErrorIs(t, err, ErrUnknownButton)
	assert.Equal(t, 5, s.Len())
	_, ok := s.Button(Key{Camera: 1, Position: 9})
	assert.False(t, ok)
}

func TestReplaceTallyPositional(t *testing.T) {
	s := twoCameras(t)
	require.NoError(t, s.ReplaceTally([]TallyState{TallyProgram, TallyIdle}))

	cams := s.Cameras()
	assert.Equal(t, TallyProgram, cams[0].Tally)
	assert.Equal(t, TallyIdle, cams[1].Tally)
}

func TestReplaceTallyLengthMismatchRejected(t *testing.T) {
	s := twoCameras(t)
	for _, states := range [][]TallyState{
		{TallyProgram},
		{TallyProgram, TallyProgram, TallyProgram},
	} {
		err := s.ReplaceTally(states)
		require.ErrorIs(t, err, ErrTallyLength)
	}
	require.ErrorIs(t, s.ReplaceTally([]TallyState{TallyProgram, 9}), ErrInvalidTally)

	cams := s.Cameras()
	assert.Equal(t, TallyPreview, cams[0].Tally, "no partial application")
	assert.Equal(t, TallyIdle, cams[1].Tally)
}

func TestReadsReturnCopies(t *testing.T) {
	s := twoCameras(t)
	bs := s.Buttons()
	bs[0].Name = "mutated"
	cams := s.Cameras()
	cams[0].Tally = TallyProgram

	b, _ := s.Button(Key{Camera: 0, Position: 0})
	assert.Equal(t, "Altar", b.Name)
	tally, _ := s.Tally(0)
	assert.Equal(t, TallyPreview, tally)
}

func TestStyleKnown(t *testing.T) {
	assert.True(t, StyleDanger.Known())
	assert.False(t, Style("btn-outline").Known())
	assert.Equal(t, "program", TallyProgram.String())
}
