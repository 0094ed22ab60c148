package sim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dennis-eisen/ptzctrl/ptz"
)

type rig struct {
	hub   *Hub
	store *Store
	srv   *httptest.Server
}

func smallLayout() Layout {
	return Layout{Cameras: []Camera{
		{Address: "10.0.0.1", Positions: 2},
		{Address: "10.0.0.2", Positions: 2},
	}}
}

func patch(cam, pos int, name, class *string) ptz.ButtonPatch {
	p := ptz.NewButtonPatch(cam, pos)
	p.Name, p.BtnClass = name, class
	return p
}

func newRig(t *testing.T) *rig {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	store, err := OpenStore(ctx, ":memory:", smallLayout())
	require.NoError(t, err)
	hub := NewHub(ctx, store, smallLayout(), nil)
	srv := httptest.NewServer(NewServer(hub, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		store.Close()
	})
	return &rig{hub: hub, store: store, srv: srv}
}

func (r *rig) dial(t *testing.T) *ptz.Client {
	t.Helper()
	c, err := ptz.Dial(context.Background(), "ws://"+strings.TrimPrefix(r.srv.URL, "http://"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// recv waits for one message so a missing broadcast fails instead of hanging.
func recv(t *testing.T, c *ptz.Client) ptz.Message {
	t.Helper()
	type result struct {
		msg ptz.Message
		err error
	}
	ch := make(chan result, 1)
	go func() {
		m, err := c.Recv()
		ch <- result{m, err}
	}()
	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return ptz.Message{}
	}
}

func recvInit(t *testing.T, c *ptz.Client) ptz.InitData {
	t.Helper()
	msg := recv(t, c)
	require.Equal(t, ptz.EventInit, msg.Event)
	var d ptz.InitData
	require.NoError(t, msg.Decode(&d))
	return d
}

func TestJoinSendsInit(t *testing.T) {
	r := newRig(t)
	d := recvInit(t, r.dial(t))

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, d.CameraIPs)
	assert.Equal(t, []int{0, 0}, d.TallyStates)
	require.Len(t, d.AllPos, 4)
	assert.Equal(t, ptz.ButtonRow{Cam: 1, Pos: 0, Name: "", BtnClass: DefaultStyle}, d.AllPos[2])
}

func TestUpdateButtonRelayedToOthersOnly(t *testing.T) {
	r := newRig(t)
	a, b := r.dial(t), r.dial(t)
	recvInit(t, a)
	recvInit(t, b)

	name, class := "Pulpit", "btn-danger"
	require.NoError(t, a.Send(ptz.EventUpdateButton, patch(0, 1, &name, &class)))

	msg := recv(t, b)
	require.Equal(t, ptz.EventUpdateButton, msg.Event)
	var p ptz.ButtonPatch
	require.NoError(t, msg.Decode(&p))
	assert.Equal(t, "Pulpit", *p.Name)

	// a's next message is the tally broadcast, not its own relay.
	require.NoError(t, r.hub.SetTally(1, 2))
	msg = recv(t, a)
	assert.Equal(t, ptz.EventUpdateTally, msg.Event)

	d := recvInit(t, r.dial(t))
	assert.Equal(t, ptz.ButtonRow{Cam: 0, Pos: 1, Name: "Pulpit", BtnClass: "btn-danger"}, d.AllPos[1])
	assert.Equal(t, []int{0, 2}, d.TallyStates)
}

func TestUpdateButtonWithoutKeyDropped(t *testing.T) {
	r := newRig(t)
	a, b := r.dial(t), r.dial(t)
	recvInit(t, a)
	recvInit(t, b)

	require.NoError(t, a.Send(ptz.EventUpdateButton, map[string]any{"name": "Hijacked"}))

	// b's next message is the tally broadcast; the patch was never relayed.
	require.NoError(t, r.hub.SetTally(0, 1))
	assert.Equal(t, ptz.EventUpdateTally, recv(t, b).Event)

	d := recvInit(t, r.dial(t))
	assert.Empty(t, d.AllPos[0].Name)
}

func TestClearAllResyncsEveryone(t *testing.T) {
	r := newRig(t)
	a, b := r.dial(t), r.dial(t)
	recvInit(t, a)
	recvInit(t, b)

	name := "Choir"
	require.NoError(t, a.Send(ptz.EventUpdateButton, patch(1, 1, &name, nil)))
	assert.Equal(t, ptz.EventUpdateButton, recv(t, b).Event)

	require.NoError(t, a.Send(ptz.EventClearAll, nil))
	for _, c := range []*ptz.Client{a, b} {
		d := recvInit(t, c)
		for _, row := range d.AllPos {
			assert.Empty(t, row.Name)
			assert.Equal(t, DefaultStyle, row.BtnClass)
		}
	}
}

func TestCameraCommandsRecorded(t *testing.T) {
	r := newRig(t)
	a := r.dial(t)
	recvInit(t, a)

	require.NoError(t, a.Send(ptz.EventSavePos, ptz.Position{Cam: 0, Pos: 1}))
	require.NoError(t, a.Send(ptz.EventRecallPos, ptz.Position{Cam: 1, Pos: 0}))
	require.NoError(t, a.Send(ptz.EventRecallPos, ptz.Position{Cam: 9, Pos: 9}))
	require.NoError(t, a.Send(ptz.EventPowerOn, nil))
	require.NoError(t, a.Send("reboot", nil))

	require.Eventually(t, func() bool { return len(r.hub.State().Actions) == 3 }, 2*time.Second, 10*time.Millisecond)
	actions := r.hub.State().Actions
	assert.Equal(t, ptz.EventSavePos, actions[0].Event)
	assert.Equal(t, 1, actions[0].Pos)
	assert.Equal(t, ptz.EventRecallPos, actions[1].Event)
	assert.Equal(t, ptz.EventPowerOn, actions[2].Event)
	assert.Equal(t, -1, actions[2].Cam)

	n, err := r.store.Saves(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPutTally(t *testing.T) {
	r := newRig(t)
	a := r.dial(t)
	recvInit(t, a)

	put := func(path string) int {
		req, err := http.NewRequest(http.MethodPut, r.srv.URL+path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, put("/tally/1/2"))
	msg := recv(t, a)
	require.Equal(t, ptz.EventUpdateTally, msg.Event)
	var states []int
	require.NoError(t, msg.Decode(&states))
	assert.Equal(t, []int{0, 2}, states)

	assert.Equal(t, http.StatusNotFound, put("/tally/5/1"))
	assert.Equal(t, http.StatusBadRequest, put("/tally/0/7"))
	assert.Equal(t, http.StatusBadRequest, put("/tally/x/1"))
	assert.Equal(t, []int{0, 2}, r.hub.State().Tally)
}

func TestHealthz(t *testing.T) {
	r := newRig(t)
	resp, err := http.Get(r.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSlowClientDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, err := OpenStore(ctx, ":memory:", smallLayout())
	require.NoError(t, err)
	defer store.Close()
	hub := NewHub(ctx, store, smallLayout(), nil)

	out := make(chan ptz.Message, 1)
	hub.Join("slow", out)
	require.Eventually(t, func() bool { return hub.State().Clients == 1 }, time.Second, 5*time.Millisecond)

	// init fills the outbox, the tally broadcast overflows it.
	require.NoError(t, hub.SetTally(0, 1))
	assert.Equal(t, 0, hub.State().Clients)

	<-out
	_, open := <-out
	assert.False(t, open)
}
