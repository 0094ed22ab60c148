package panel

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dennis-eisen/ptzctrl/grid"
	"github.com/dennis-eisen/ptzctrl/ptz"
)

// HandleMessage applies one inbound server message to the grid. Protocol
// violations are logged and returned; the message is then ignored as a
// whole. Unknown events are logged and are not an error.
func (c *Controller) HandleMessage(msg ptz.Message) error {
	var err error
	switch msg.Event {
	case ptz.EventInit:
		err = c.handleInit(msg)
	case ptz.EventUpdateButton:
		err = c.handleUpdateButton(msg)
	case ptz.EventUpdateTally:
		err = c.handleUpdateTally(msg)
	default:
		c.log.Warn("unknown event", zap.String("event", msg.Event), zap.ByteString("data", msg.Data))
		return nil
	}
	if err != nil {
		c.log.Warn("message rejected", zap.String("event", msg.Event), zap.Error(err))
	}
	return err
}

func (c *Controller) handleInit(msg ptz.Message) error {
	var d ptz.InitData
	if err := msg.Decode(&d); err != nil {
		return err
	}
	buttons := make([]grid.Button, len(d.AllPos))
	for i, row := range d.AllPos {
		buttons[i] = grid.Button{Camera: row.Cam, Position: row.Pos, Name: row.Name, Style: grid.Style(row.BtnClass)}
	}
	if err := c.store.ReplaceAll(d.CameraIPs, buttons, tallyStates(d.TallyStates)); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	c.log.Info("resync", zap.Int("cameras", len(d.CameraIPs)), zap.Int("buttons", len(buttons)))

	if c.edit != nil {
		if _, ok := c.store.Button(c.edit.Target.Key()); !ok {
			c.log.Warn("edited button vanished on resync", zap.Stringer("button", c.edit.Target.Key()))
			c.edit = nil
		}
	}
	return nil
}

func (c *Controller) handleUpdateButton(msg ptz.Message) error {
	var p ptz.ButtonPatch
	if err := msg.Decode(&p); err != nil {
		return err
	}
	cam, pos, err := p.Key()
	if err != nil {
		return err
	}
	patch := grid.Patch{Key: grid.Key{Camera: cam, Position: pos}, Name: p.Name}
	if p.BtnClass != nil {
		s := grid.Style(*p.BtnClass)
		patch.Style = &s
	}
	_, err = c.store.PatchButton(patch)
	return err
}

func (c *Controller) handleUpdateTally(msg ptz.Message) error {
	var states []int
	if err := msg.Decode(&states); err != nil {
		return err
	}
	return c.store.ReplaceTally(tallyStates(states))
}

func tallyStates(raw []int) []grid.TallyState {
	out := make([]grid.TallyState, len(raw))
	for i, v := range raw {
		out[i] = grid.TallyState(v)
	}
	return out
}
