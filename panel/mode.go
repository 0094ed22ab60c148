package panel

import "fmt"

// Mode selects what activating a preset button does.
type Mode int

const (
	ModeRecall Mode = iota
	ModeSet
	ModeLabel
)

func (m Mode) String() string {
	switch m {
	case ModeRecall:
		return "recall"
	case ModeSet:
		return "set"
	case ModeLabel:
		return "label"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps "recall", "set" or "label" to a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeRecall, ModeSet, ModeLabel} {
		if m.String() == s {
			return m, nil
		}
	}
	return ModeRecall, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// ModeController holds the one active mode. The zero value is in Recall.
// Modes only change through Select.
type ModeController struct {
	current Mode
}

// Current returns the active mode.
func (mc *ModeController) Current() Mode {
	return mc.current
}

// Select makes m the active mode.
func (mc *ModeController) Select(m Mode) error {
	switch m {
	case ModeRecall, ModeSet, ModeLabel:
		mc.current = m
		return nil
	}
	return fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
}
