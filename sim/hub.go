// Package sim is a stand-in for the preset server. It speaks the same
// websocket protocol as the real thing, keeps buttons in SQLite and logs
// camera commands instead of driving hardware.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dennis-eisen/ptzctrl/grid"
	"github.com/dennis-eisen/ptzctrl/ptz"
)

type hubMsg interface{ isHubMsg() }

type join struct {
	id  string
	out chan ptz.Message
}

type leave struct{ id string }

type fromClient struct {
	id  string
	msg ptz.Message
}

type setTally struct {
	cam   int
	state int
	reply chan error
}

type getState struct{ reply chan View }

func (join) isHubMsg()       {}
func (leave) isHubMsg()      {}
func (fromClient) isHubMsg() {}
func (setTally) isHubMsg()   {}
func (getState) isHubMsg()   {}

// Action is a camera command the simulator accepted. Cam and Pos are -1
// for commands that address all cameras.
type Action struct {
	Event  string
	Cam    int
	Pos    int
	Client string
	At     time.Time
}

// View is a copy of the hub state.
type View struct {
	Clients int
	Tally   []int
	Actions []Action
}

// Hub owns all simulator state. Everything runs on its loop goroutine.
type Hub struct {
	inbox   chan hubMsg
	clients map[string]chan ptz.Message
	tally   []int
	actions []Action

	store  *Store
	layout Layout
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub starts the hub loop. It stops when parent is cancelled or Close
// is called.
func NewHub(parent context.Context, store *Store, layout Layout, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan hubMsg, 64),
		clients: make(map[string]chan ptz.Message),
		tally:   make([]int, len(layout.Cameras)),
		store:   store,
		layout:  layout,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

// Close stops the loop and closes every client outbox.
func (h *Hub) Close() {
	h.cancel()
}

func (h *Hub) post(m hubMsg) bool {
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Join registers a client. Its first message is init.
func (h *Hub) Join(id string, out chan ptz.Message) { h.post(join{id: id, out: out}) }

// Leave unregisters a client.
func (h *Hub) Leave(id string) { h.post(leave{id: id}) }

// Deliver hands a client's message to the hub.
func (h *Hub) Deliver(id string, msg ptz.Message) { h.post(fromClient{id: id, msg: msg}) }

// SetTally changes one camera's tally and broadcasts the new array.
func (h *Hub) SetTally(cam, state int) error {
	reply := make(chan error, 1)
	if !h.post(setTally{cam: cam, state: state, reply: reply}) {
		return h.ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-h.ctx.Done():
		return h.ctx.Err()
	}
}

// State returns a snapshot of the hub.
func (h *Hub) State() View {
	reply := make(chan View, 1)
	if !h.post(getState{reply: reply}) {
		return View{}
	}
	select {
	case v := <-reply:
		return v
	case <-h.ctx.Done():
		return View{}
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case join:
				h.clients[msg.id] = msg.out
				h.log.Info("client joined", zap.String("client", msg.id), zap.Int("clients", len(h.clients)))
				if first, err := h.initMessage(); err != nil {
					h.log.Error("build init", zap.Error(err))
				} else {
					h.deliver(msg.id, first)
				}

			case leave:
				delete(h.clients, msg.id)
				h.log.Info("client left", zap.String("client", msg.id), zap.Int("clients", len(h.clients)))

			case fromClient:
				h.handle(msg.id, msg.msg)

			case setTally:
				msg.reply <- h.setTally(msg.cam, msg.state)

			case getState:
				msg.reply <- View{
					Clients: len(h.clients),
					Tally:   append([]int(nil), h.tally...),
					Actions: append([]Action(nil), h.actions...),
				}
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
}

func (h *Hub) handle(id string, msg ptz.Message) {
	log := h.log.With(zap.String("client", id), zap.String("event", msg.Event))

	switch msg.Event {
	case ptz.EventUpdateButton:
		var p ptz.ButtonPatch
		if err := msg.Decode(&p); err != nil {
			log.Warn("bad payload", zap.Error(err))
			return
		}
		cam, pos, err := p.Key()
		if err != nil {
			log.Warn("bad payload", zap.Error(err))
			return
		}
		ok, err := h.store.Update(h.ctx, p)
		if err != nil {
			log.Error("store update", zap.Error(err))
			return
		}
		if !ok {
			log.Warn("unknown button", zap.Int("cam", cam), zap.Int("pos", pos))
			return
		}
		for other := range h.clients {
			if other != id {
				h.deliver(other, msg)
			}
		}

	case ptz.EventSavePos, ptz.EventRecallPos:
		var p ptz.Position
		if err := msg.Decode(&p); err != nil {
			log.Warn("bad payload", zap.Error(err))
			return
		}
		if !h.exists(p.Cam, p.Pos) {
			log.Warn("unknown button", zap.Int("cam", p.Cam), zap.Int("pos", p.Pos))
			return
		}
		if msg.Event == ptz.EventSavePos {
			if _, err := h.store.MarkSaved(h.ctx, p.Cam, p.Pos); err != nil {
				log.Error("store save", zap.Error(err))
				return
			}
		}
		h.record(id, msg.Event, p.Cam, p.Pos)

	case ptz.EventClearAll:
		if err := h.store.Reset(h.ctx); err != nil {
			log.Error("store reset", zap.Error(err))
			return
		}
		h.record(id, msg.Event, -1, -1)
		resync, err := h.initMessage()
		if err != nil {
			log.Error("build init", zap.Error(err))
			return
		}
		h.broadcast(resync)

	case ptz.EventPowerOn, ptz.EventPowerOff, ptz.EventFocusLock, ptz.EventFocusUnlock:
		h.record(id, msg.Event, -1, -1)

	default:
		log.Warn("unsupported event", zap.ByteString("data", msg.Data))
	}
}

func (h *Hub) exists(cam, pos int) bool {
	return cam >= 0 && cam < len(h.layout.Cameras) && pos >= 0 && pos < h.layout.Cameras[cam].Positions
}

func (h *Hub) record(id, event string, cam, pos int) {
	h.actions = append(h.actions, Action{Event: event, Cam: cam, Pos: pos, Client: id, At: time.Now()})
	h.log.Info("camera command", zap.String("client", id), zap.String("event", event), zap.Int("cam", cam), zap.Int("pos", pos))
}

func (h *Hub) setTally(cam, state int) error {
	if cam < 0 || cam >= len(h.tally) {
		return fmt.Errorf("tally cam %d: %w", cam, grid.ErrUnknownCamera)
	}
	if !grid.TallyState(state).Valid() {
		return fmt.Errorf("tally cam %d: %w: %d", cam, grid.ErrInvalidTally, state)
	}
	h.tally[cam] = state
	msg, err := message(ptz.EventUpdateTally, h.tally)
	if err != nil {
		return err
	}
	h.broadcast(msg)
	return nil
}

func (h *Hub) initMessage() (ptz.Message, error) {
	rows, err := h.store.Rows(h.ctx)
	if err != nil {
		return ptz.Message{}, err
	}
	return message(ptz.EventInit, ptz.InitData{
		CameraIPs:   h.layout.Addresses(),
		AllPos:      rows,
		TallyStates: h.tally,
	})
}

func (h *Hub) broadcast(msg ptz.Message) {
	for id := range h.clients {
		h.deliver(id, msg)
	}
}

// deliver queues msg for one client. A client whose outbox is full is
// dropped.
func (h *Hub) deliver(id string, msg ptz.Message) {
	out, ok := h.clients[id]
	if !ok {
		return
	}
	select {
	case out <- msg:
	default:
		h.log.Warn("dropping slow client", zap.String("client", id))
		close(out)
		delete(h.clients, id)
	}
}

func message(event string, data any) (ptz.Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return ptz.Message{}, fmt.Errorf("marshal %s: %w", event, err)
	}
	return ptz.Message{Event: event, Data: raw}, nil
}
