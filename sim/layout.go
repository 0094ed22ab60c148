package sim

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// DefaultStyle is the style every button starts with and returns to on
// clear_all.
const DefaultStyle = "btn-secondary"

// Camera is one entry of the simulated rig.
type Camera struct {
	Address   string `toml:"address"`
	Positions int    `toml:"positions"`
}

// Layout describes the simulated cameras in index order.
type Layout struct {
	Cameras []Camera `toml:"camera"`
}

const DefaultLayoutToml = `# ptzsim camera layout

[[camera]]
address = "192.168.0.101"
positions = 8

[[camera]]
address = "192.168.0.102"
positions = 8

[[camera]]
address = "192.168.0.103"
positions = 8
`

// DefaultLayout is three cameras with eight presets each.
func DefaultLayout() Layout {
	var l Layout
	if _, err := toml.Decode(DefaultLayoutToml, &l); err != nil {
		panic(err)
	}
	return l
}

// LoadLayout reads a layout from a TOML file.
func LoadLayout(path string) (Layout, error) {
	var l Layout
	if _, err := toml.DecodeFile(path, &l); err != nil {
		return Layout{}, fmt.Errorf("load layout: %w", err)
	}
	return l, l.Validate()
}

// Validate checks the layout has at least one camera and no negative
// position counts.
func (l Layout) Validate() error {
	if len(l.Cameras) == 0 {
		return errors.New("layout: no cameras")
	}
	for i, c := range l.Cameras {
		if c.Positions < 0 {
			return fmt.Errorf("layout: camera %d: negative positions", i)
		}
	}
	return nil
}

// Addresses lists the camera addresses in index order.
func (l Layout) Addresses() []string {
	out := make([]string, len(l.Cameras))
	for i, c := range l.Cameras {
		out[i] = c.Address
	}
	return out
}
