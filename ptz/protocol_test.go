package ptz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNilDataIsNull(t *testing.T) {
	frame, err := Encode(EventClearAll, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"clear_all","data":null}`, string(frame))
}

func TestEncodePosition(t *testing.T) {
	frame, err := Encode(EventSavePos, Position{Cam: 1, Pos: 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"save_pos","data":{"cam":1,"pos":4}}`, string(frame))
}

func TestDecodeFrame(t *testing.T) {
	cases := []struct {
		name    string
		frame   string
		event   string
		wantErr bool
	}{
		{name: "tally", frame: `{"event":"update_tally","data":[0,2]}`, event: EventUpdateTally},
		{name: "null data", frame: `{"event":"power_on","data":null}`, event: EventPowerOn},
		{name: "no event", frame: `{"data":1}`, wantErr: true},
		{name: "not json", frame: `hello`, wantErr: true},
		{name: "array", frame: `["init",{}]`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := DecodeFrame([]byte(tc.frame))
			if tc.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.event, msg.Event)
		})
	}
}

func TestMessageDecodePatchKeepsAbsentFieldsNil(t *testing.T) {
	msg, err := DecodeFrame([]byte(`{"event":"update_button","data":{"cam":0,"pos":3,"name":"Pulpit"}}`))
	require.NoError(t, err)

	var p ButtonPatch
	require.NoError(t, msg.Decode(&p))
	require.NotNil(t, p.Name)
	assert.Equal(t, "Pulpit", *p.Name)
	assert.Nil(t, p.BtnClass)

	cam, pos, err := p.Key()
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 3}, [2]int{cam, pos})
}

func TestButtonPatchNeedsKey(t *testing.T) {
	for _, data := range []string{`{"name":"Hijacked"}`, `{"cam":1,"name":"x"}`, `{"cam":null,"pos":0}`} {
		var p ButtonPatch
		require.NoError(t, Message{Event: EventUpdateButton, Data: json.RawMessage(data)}.Decode(&p), data)
		_, _, err := p.Key()
		assert.ErrorIs(t, err, ErrMalformed, data)
	}
}

func TestMessageDecodeRejectsNull(t *testing.T) {
	msg := Message{Event: EventUpdateTally, Data: json.RawMessage("null")}
	var states []int
	assert.ErrorIs(t, msg.Decode(&states), ErrMalformed)
}

func TestURL(t *testing.T) {
	cases := map[string]string{
		"studio":           "ws://studio:6789/",
		"10.0.0.5:7000":    "ws://10.0.0.5:7000/",
		"ws://studio:6789": "ws://studio:6789/",
		"wss://studio/ptz": "wss://studio/ptz",
		"[::1]":            "ws://[::1]:6789/",
	}
	for in, want := range cases {
		got, err := URL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestBackoff(t *testing.T) {
	b := Backoff{Initial: 100, Max: 350, Attempts: 4}
	var got []int64
	for n := 1; ; n++ {
		d, ok := b.Next(n)
		if !ok {
			break
		}
		got = append(got, int64(d))
	}
	assert.Equal(t, []int64{100, 200, 350, 350}, got)

	_, ok := NoReconnect{}.Next(1)
	assert.False(t, ok)
}
