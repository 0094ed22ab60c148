package ptz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrDisconnected is returned by Send while a Redialer has no live connection.
var ErrDisconnected = errors.New("disconnected")

// ReconnectPolicy decides whether and when to redial after a connection drops.
type ReconnectPolicy interface {
	// Next returns the wait before redial attempt n (starting at 1), or
	// false to give up.
	Next(attempt int) (time.Duration, bool)
}

// NoReconnect gives up on the first failure.
type NoReconnect struct{}

func (NoReconnect) Next(int) (time.Duration, bool) { return 0, false }

// Backoff redials with exponential backoff. Attempts == 0 means forever.
type Backoff struct {
	Initial  time.Duration
	Max      time.Duration
	Attempts int
}

func (b Backoff) Next(attempt int) (time.Duration, bool) {
	if b.Attempts > 0 && attempt > b.Attempts {
		return 0, false
	}
	d := b.Initial
	if d <= 0 {
		d = time.Second
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max, true
		}
	}
	return d, true
}

// State is the connection state reported by a Redialer.
type State int

const (
	StateConnected State = iota
	StateDisconnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// DialFunc opens a fresh channel.
type DialFunc func(ctx context.Context) (Channel, error)

// Redialer is a Channel that replaces its underlying connection according
// to a ReconnectPolicy. Messages are still delivered in order; after a
// redial the server's init frame resyncs the client.
type Redialer struct {
	dial   DialFunc
	policy ReconnectPolicy
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	ch Channel

	// OnStateChange is called from the receiving goroutine.
	OnStateChange func(State)
}

// NewRedialer dials once and returns the wrapping channel.
func NewRedialer(ctx context.Context, dial DialFunc, policy ReconnectPolicy, log *zap.Logger) (*Redialer, error) {
	if policy == nil {
		policy = NoReconnect{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	ch, err := dial(ctx)
	if err != nil {
		return nil, err
	}
	rctx, cancel := context.WithCancel(ctx)
	return &Redialer{dial: dial, policy: policy, log: log, ctx: rctx, cancel: cancel, ch: ch}, nil
}

func (r *Redialer) current() Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch
}

func (r *Redialer) setState(s State) {
	if r.OnStateChange != nil {
		r.OnStateChange(s)
	}
}

// Send writes on the live connection, or fails with ErrDisconnected.
func (r *Redialer) Send(event string, data any) error {
	ch := r.current()
	if ch == nil {
		return fmt.Errorf("send %s: %w", event, ErrDisconnected)
	}
	return ch.Send(event, data)
}

// Recv returns the next frame, redialing on connection loss while the
// policy allows it.
func (r *Redialer) Recv() (Message, error) {
	for {
		ch := r.current()
		if ch == nil {
			return Message{}, ErrDisconnected
		}
		msg, err := ch.Recv()
		if err == nil || errors.Is(err, ErrMalformed) {
			return msg, err
		}

		r.mu.Lock()
		r.ch = nil
		r.mu.Unlock()
		ch.Close()
		r.setState(StateDisconnected)
		r.log.Warn("connection lost", zap.Error(err))

		if !r.redial() {
			return Message{}, err
		}
	}
}

func (r *Redialer) redial() bool {
	for attempt := 1; ; attempt++ {
		wait, ok := r.policy.Next(attempt)
		if !ok {
			return false
		}
		r.setState(StateReconnecting)
		select {
		case <-r.ctx.Done():
			return false
		case <-time.After(wait):
		}

		ch, err := r.dial(r.ctx)
		if err != nil {
			r.log.Warn("redial failed", zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
			continue
		}
		r.mu.Lock()
		r.ch = ch
		r.mu.Unlock()
		r.log.Info("reconnected", zap.Int("attempt", attempt))
		r.setState(StateConnected)
		return true
	}
}

// Close stops redialing and closes the live connection.
func (r *Redialer) Close() error {
	r.cancel()
	r.mu.Lock()
	ch := r.ch
	r.ch = nil
	r.mu.Unlock()
	if ch != nil {
		return ch.Close()
	}
	return nil
}
