// Package panel is the client core of the preset control panel. A
// Controller owns the grid mirror, the input mode and the label edit
// session, and turns button activations into requests for the server.
//
// A Controller is driven from a single event loop: user input and inbound
// server messages are applied one at a time, in arrival order. It holds no
// locks.
package panel

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dennis-eisen/ptzctrl/grid"
	"github.com/dennis-eisen/ptzctrl/ptz"
)

var (
	ErrInvalidMode    = errors.New("invalid mode")
	ErrInvalidToggle  = errors.New("toggle must be \"on\" or \"off\"")
	ErrInvalidStyle   = errors.New("unknown button style")
	ErrEditInProgress = errors.New("a label edit is already open")
	ErrNoEdit         = errors.New("no label edit open")
)

// Sender delivers one event to the server. ptz.Channel satisfies it.
type Sender interface {
	Send(event string, data any) error
}

// ProtectionStore persists the on-air change protection flag.
type ProtectionStore interface {
	Protected() bool
	SetProtected(on bool) error
}

// Feedback is the transient signal the UI shows after an activation.
type Feedback int

const (
	FeedbackNone Feedback = iota
	FeedbackReject
	FeedbackSuccess
	FeedbackEdit
)

// Duration is how long the UI should show the signal.
func (f Feedback) Duration() time.Duration {
	switch f {
	case FeedbackReject:
		return 300 * time.Millisecond
	case FeedbackSuccess:
		return 500 * time.Millisecond
	default:
		return 0
	}
}

// Draft is the editable part of a button.
type Draft struct {
	Name  string
	Style grid.Style
}

// Edit is an open label edit: the button as it was when the dialog opened
// and the draft pre-filled from it.
type Edit struct {
	Target grid.Button
	Draft  Draft
}

// Controller is the single state object behind the panel.
type Controller struct {
	store *grid.Store
	modes ModeController
	edit  *Edit

	out   Sender
	prefs ProtectionStore
	log   *zap.Logger
}

// New returns a Controller with an empty grid in Recall mode.
func New(out Sender, prefs ProtectionStore, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		store: grid.NewStore(),
		out:   out,
		prefs: prefs,
		log:   log,
	}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.modes.Current()
}

// SelectMode switches the active mode.
func (c *Controller) SelectMode(m Mode) error {
	if err := c.modes.Select(m); err != nil {
		return err
	}
	c.log.Debug("mode", zap.Stringer("mode", m))
	return nil
}

// Groups returns the buttons grouped per camera.
func (c *Controller) Groups() []grid.Group { return c.store.Groups() }

// Cameras returns all cameras with their tally.
func (c *Controller) Cameras() []grid.Camera { return c.store.Cameras() }

// Button looks up one button.
func (c *Controller) Button(k grid.Key) (grid.Button, bool) { return c.store.Button(k) }

// Protected reports whether recalls on a live camera are blocked.
func (c *Controller) Protected() bool {
	return c.prefs != nil && c.prefs.Protected()
}

// Editing returns the open label edit, if any.
func (c *Controller) Editing() (Edit, bool) {
	if c.edit == nil {
		return Edit{}, false
	}
	return *c.edit, true
}

// Activate handles a click on a preset button according to the active mode.
func (c *Controller) Activate(k grid.Key) (Feedback, error) {
	b, ok := c.store.Button(k)
	if !ok {
		return FeedbackNone, fmt.Errorf("activate %s: %w", k, grid.ErrUnknownButton)
	}
	switch c.modes.Current() {
	case ModeSet:
		return c.save(k)
	case ModeLabel:
		return c.openEdit(b)
	default:
		return c.recall(b)
	}
}

func (c *Controller) recall(b grid.Button) (Feedback, error) {
	if tally, _ := c.store.Tally(b.Camera); tally == grid.TallyProgram && c.Protected() {
		c.log.Info("recall blocked, camera is on air", zap.Stringer("button", b.Key()))
		return FeedbackReject, nil
	}
	return FeedbackNone, c.send(ptz.EventRecallPos, ptz.Position{Cam: b.Camera, Pos: b.Position})
}

// save sends save_pos. Success is signalled without waiting for the server.
func (c *Controller) save(k grid.Key) (Feedback, error) {
	if err := c.send(ptz.EventSavePos, ptz.Position{Cam: k.Camera, Pos: k.Position}); err != nil {
		return FeedbackNone, err
	}
	return FeedbackSuccess, nil
}

func (c *Controller) openEdit(b grid.Button) (Feedback, error) {
	if c.edit != nil {
		return FeedbackNone, fmt.Errorf("edit %s: %w", b.Key(), ErrEditInProgress)
	}
	c.edit = &Edit{Target: b, Draft: Draft{Name: b.Name, Style: b.Style}}
	return FeedbackEdit, nil
}

// Confirm applies the draft to the edited button locally, sends the merged
// button to the server and closes the edit.
func (c *Controller) Confirm(d Draft) error {
	if c.edit == nil {
		return ErrNoEdit
	}
	if !d.Style.Known() {
		return fmt.Errorf("%w: %q", ErrInvalidStyle, d.Style)
	}
	k := c.edit.Target.Key()
	defer func() { c.edit = nil }()

	merged, err := c.store.PatchButton(grid.Patch{Key: k, Name: &d.Name, Style: &d.Style})
	if err != nil {
		return err
	}
	return c.send(ptz.EventUpdateButton, rowOf(merged))
}

// ConfirmAndSet confirms the draft, then saves the camera position for the
// same button.
func (c *Controller) ConfirmAndSet(d Draft) (Feedback, error) {
	if c.edit == nil {
		return FeedbackNone, ErrNoEdit
	}
	k := c.edit.Target.Key()
	if err := c.Confirm(d); err != nil {
		return FeedbackNone, err
	}
	return c.save(k)
}

// Cancel drops the open edit without sending anything.
func (c *Controller) Cancel() {
	if c.edit != nil {
		c.log.Debug("edit cancelled", zap.Stringer("button", c.edit.Target.Key()))
	}
	c.edit = nil
}

// ParseToggle maps "on" and "off" to a bool.
func ParseToggle(v string) (bool, error) {
	switch v {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidToggle, v)
}

func (c *Controller) toggle(v, onEvent, offEvent string) error {
	on, err := ParseToggle(v)
	if err != nil {
		c.log.Error("rejected toggle", zap.String("on", onEvent), zap.Error(err))
		return err
	}
	if on {
		return c.send(onEvent, nil)
	}
	return c.send(offEvent, nil)
}

// Power switches all cameras on or off.
func (c *Controller) Power(v string) error {
	return c.toggle(v, ptz.EventPowerOn, ptz.EventPowerOff)
}

// FocusLock locks or unlocks focus on all cameras.
func (c *Controller) FocusLock(v string) error {
	return c.toggle(v, ptz.EventFocusLock, ptz.EventFocusUnlock)
}

// ClearAll asks the server to reset every label and style. The caller is
// responsible for confirming with the user first.
func (c *Controller) ClearAll() error {
	return c.send(ptz.EventClearAll, nil)
}

// SetProtection validates and persists the on-air change protection toggle.
func (c *Controller) SetProtection(v string) error {
	on, err := ParseToggle(v)
	if err != nil {
		c.log.Error("rejected toggle", zap.String("pref", "protection"), zap.Error(err))
		return err
	}
	if c.prefs == nil {
		return nil
	}
	if err := c.prefs.SetProtected(on); err != nil {
		return fmt.Errorf("save protection: %w", err)
	}
	return nil
}

func (c *Controller) send(event string, data any) error {
	if c.out == nil {
		return fmt.Errorf("send %s: %w", event, ptz.ErrDisconnected)
	}
	if err := c.out.Send(event, data); err != nil {
		c.log.Warn("send failed", zap.String("event", event), zap.Error(err))
		return err
	}
	return nil
}

func rowOf(b grid.Button) ptz.ButtonRow {
	return ptz.ButtonRow{Cam: b.Camera, Pos: b.Position, Name: b.Name, BtnClass: string(b.Style)}
}
