// Package grid holds the local mirror of the preset server's state: the
// cameras with their tally lights and the preset buttons grouped by camera.
//
// Cameras and tally states are keyed by position. Buttons are grouped by
// contiguity: a new group starts wherever the camera index changes between
// two consecutive buttons. ReplaceAll enforces both rules on its input.
//
// A Store is not safe for concurrent use; it is owned by one event loop.
package grid

import (
	"errors"
	"fmt"
)

var (
	ErrTallyLength     = errors.New("tally length does not match camera count")
	ErrInvalidTally    = errors.New("invalid tally state")
	ErrUnknownCamera   = errors.New("unknown camera")
	ErrUnknownButton   = errors.New("unknown button")
	ErrDuplicateButton = errors.New("duplicate button")
	ErrNotContiguous   = errors.New("buttons not grouped by ascending camera")
)

// TallyState is a camera's on-air indicator.
type TallyState int

const (
	TallyIdle TallyState = iota
	TallyPreview
	TallyProgram
)

func (t TallyState) String() string {
	switch t {
	case TallyIdle:
		return "idle"
	case TallyPreview:
		return "preview"
	case TallyProgram:
		return "program"
	default:
		return fmt.Sprintf("tally(%d)", int(t))
	}
}

// Valid reports whether t is one of the three known states.
func (t TallyState) Valid() bool {
	return t >= TallyIdle && t <= TallyProgram
}

// Style is a button's label colour class.
type Style string

const (
	StylePrimary   Style = "btn-primary"
	StyleSecondary Style = "btn-secondary"
	StyleSuccess   Style = "btn-success"
	StyleDanger    Style = "btn-danger"
	StyleWarning   Style = "btn-warning"
	StyleInfo      Style = "btn-info"
	StyleLight     Style = "btn-light"
	StyleDark      Style = "btn-dark"
)

// Styles is the vocabulary offered when editing a label, in display order.
var Styles = []Style{
	StylePrimary, StyleSecondary, StyleSuccess, StyleDanger,
	StyleWarning, StyleInfo, StyleLight, StyleDark,
}

// Known reports whether s is part of the Styles vocabulary.
func (s Style) Known() bool {
	for _, k := range Styles {
		if s == k {
			return true
		}
	}
	return false
}

// Key identifies a button. It never changes once the button exists.
type Key struct {
	Camera   int
	Position int
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.Camera, k.Position)
}

// Camera is one camera column.
type Camera struct {
	Index   int
	Address string
	Tally   TallyState
}

// Button is one stored preset.
type Button struct {
	Camera   int
	Position int
	Name     string
	Style    Style
}

// Key returns the button's identity.
func (b Button) Key() Key {
	return Key{Camera: b.Camera, Position: b.Position}
}

// Patch carries the fields of a partial button update. Nil fields are left
// unchanged.
type Patch struct {
	Key   Key
	Name  *string
	Style *Style
}

// Group is a contiguous run of buttons for one camera.
type Group struct {
	Camera  Camera
	Buttons []Button
}
