package ptz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Wire format: one JSON object per websocket text frame.
//
//	{"event": "<name>", "data": <any JSON value or null>}

// Client -> server events.
const (
	EventSavePos      = "save_pos"
	EventRecallPos    = "recall_pos"
	EventClearAll     = "clear_all"
	EventPowerOn      = "power_on"
	EventPowerOff     = "power_off"
	EventFocusLock    = "focus_lock"
	EventFocusUnlock  = "focus_unlock"
	EventUpdateButton = "update_button"
)

// Server -> client events. update_button is shared with the outbound set.
const (
	EventInit        = "init"
	EventUpdateTally = "update_tally"
)

// ErrMalformed is returned for frames that are not {"event": string, ...}.
var ErrMalformed = errors.New("malformed message")

// Message is one protocol frame.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Decode unmarshals the message payload into v.
func (m Message) Decode(v any) error {
	if len(m.Data) == 0 || bytes.Equal(m.Data, []byte("null")) {
		return fmt.Errorf("%s: %w: missing data", m.Event, ErrMalformed)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%s: %w: %v", m.Event, ErrMalformed, err)
	}
	return nil
}

// Encode builds the frame for event with payload data. A nil data encodes as null.
func Encode(event string, data any) ([]byte, error) {
	raw := json.RawMessage("null")
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", event, err)
		}
		raw = b
	}
	return json.Marshal(Message{Event: event, Data: raw})
}

// DecodeFrame parses one frame.
func DecodeFrame(frame []byte) (Message, error) {
	var probe struct {
		Event *string         `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(frame, &probe); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if probe.Event == nil {
		return Message{}, fmt.Errorf("%w: no event", ErrMalformed)
	}
	return Message{Event: *probe.Event, Data: probe.Data}, nil
}

// Position addresses one stored preset: save_pos and recall_pos payload.
type Position struct {
	Cam int `json:"cam"`
	Pos int `json:"pos"`
}

// ButtonRow is a full button record as stored by the server.
type ButtonRow struct {
	Cam      int    `json:"cam"`
	Pos      int    `json:"pos"`
	Name     string `json:"name"`
	BtnClass string `json:"btn_class"`
}

// ButtonPatch is an inbound update_button payload. Absent fields stay nil.
type ButtonPatch struct {
	Cam      *int    `json:"cam"`
	Pos      *int    `json:"pos"`
	Name     *string `json:"name,omitempty"`
	BtnClass *string `json:"btn_class,omitempty"`
}

// NewButtonPatch addresses a patch at one button.
func NewButtonPatch(cam, pos int) ButtonPatch {
	return ButtonPatch{Cam: &cam, Pos: &pos}
}

// Key returns the patched button. A patch without cam or pos is malformed.
func (p ButtonPatch) Key() (cam, pos int, err error) {
	if p.Cam == nil || p.Pos == nil {
		return 0, 0, fmt.Errorf("%s: %w: missing cam or pos", EventUpdateButton, ErrMalformed)
	}
	return *p.Cam, *p.Pos, nil
}

// InitData is the full resync payload.
type InitData struct {
	CameraIPs   []string    `json:"camera_ips"`
	AllPos      []ButtonRow `json:"all_pos"`
	TallyStates []int       `json:"tally_states"`
}
