package grid

import "fmt"

// Store is the authoritative local copy of cameras, buttons and tally.
type Store struct {
	cameras []Camera
	buttons []Button
	index   map[Key]int // position in buttons
}

// NewStore returns an empty store. It stays empty until the first ReplaceAll.
func NewStore() *Store {
	return &Store{index: make(map[Key]int)}
}

// ReplaceAll rebuilds the store from a full resync. tally must have one
// entry per address and buttons must be grouped contiguously in ascending
// camera order. On any violation the store is left as it was.
func (s *Store) ReplaceAll(addresses []string, buttons []Button, tally []TallyState) error {
	if len(tally) != len(addresses) {
		return fmt.Errorf("%w: %d states for %d cameras", ErrTallyLength, len(tally), len(addresses))
	}
	for i, t := range tally {
		if !t.Valid() {
			return fmt.Errorf("camera %d: %w: %d", i, ErrInvalidTally, int(t))
		}
	}

	index := make(map[Key]int, len(buttons))
	last := -1
	for i, b := range buttons {
		if b.Camera < 0 || b.Camera >= len(addresses) {
			return fmt.Errorf("button %s: %w", b.Key(), ErrUnknownCamera)
		}
		if b.Camera < last {
			return fmt.Errorf("button %s after camera %d: %w", b.Key(), last, ErrNotContiguous)
		}
		last = b.Camera
		if _, dup := index[b.Key()]; dup {
			return fmt.Errorf("button %s: %w", b.Key(), ErrDuplicateButton)
		}
		index[b.Key()] = i
	}

	cameras := make([]Camera, len(addresses))
	for i, addr := range addresses {
		cameras[i] = Camera{Index: i, Address: addr, Tally: tally[i]}
	}

	s.cameras = cameras
	s.buttons = append([]Button(nil), buttons...)
	s.index = index
	return nil
}

// PatchButton merges the present fields of p into the existing button and
// returns the result. A patch for an unknown key is not inserted.
func (s *Store) PatchButton(p Patch) (Button, error) {
	i, ok := s.index[p.Key]
	if !ok {
		return Button{}, fmt.Errorf("patch %s: %w", p.Key, ErrUnknownButton)
	}
	b := &s.buttons[i]
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Style != nil {
		b.Style = *p.Style
	}
	return *b, nil
}

// ReplaceTally sets camera i's tally to states[i]. A length mismatch or an
// unknown state rejects the whole update.
func (s *Store) ReplaceTally(states []TallyState) error {
	if len(states) != len(s.cameras) {
		return fmt.Errorf("%w: %d states for %d cameras", ErrTallyLength, len(states), len(s.cameras))
	}
	for i, t := range states {
		if !t.Valid() {
			return fmt.Errorf("camera %d: %w: %d", i, ErrInvalidTally, int(t))
		}
	}
	for i, t := range states {
		s.cameras[i].Tally = t
	}
	return nil
}

// Cameras returns the cameras in index order.
func (s *Store) Cameras() []Camera {
	return append([]Camera(nil), s.cameras...)
}

// Buttons returns all buttons in server order.
func (s *Store) Buttons() []Button {
	return append([]Button(nil), s.buttons...)
}

// Button looks up one button by key.
func (s *Store) Button(k Key) (Button, bool) {
	i, ok := s.index[k]
	if !ok {
		return Button{}, false
	}
	return s.buttons[i], true
}

// Tally returns the tally state of a camera.
func (s *Store) Tally(camera int) (TallyState, bool) {
	if camera < 0 || camera >= len(s.cameras) {
		return TallyIdle, false
	}
	return s.cameras[camera].Tally, true
}

// Groups segments the buttons into per-camera runs. Cameras without
// buttons have no group.
func (s *Store) Groups() []Group {
	var groups []Group
	for _, b := range s.buttons {
		if n := len(groups); n == 0 || groups[n-1].Camera.Index != b.Camera {
			groups = append(groups, Group{Camera: s.cameras[b.Camera]})
		}
		g := &groups[len(groups)-1]
		g.Buttons = append(g.Buttons, b)
	}
	return groups
}

// Len returns the number of buttons.
func (s *Store) Len() int {
	return len(s.buttons)
}
