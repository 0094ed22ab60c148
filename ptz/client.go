package ptz

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// DefaultPort is the websocket port of the preset server.
const DefaultPort = "6789"

// Channel is an ordered, full-duplex message channel to one server.
// Recv must be called from a single goroutine.
type Channel interface {
	Send(event string, data any) error
	Recv() (Message, error)
	Close() error
}

// Client is a Channel over one websocket connection.
type Client struct {
	conn         *websocket.Conn
	ctx          context.Context
	cancel       context.CancelFunc
	writeTimeout time.Duration
	log          *zap.Logger
}

type options struct {
	dialTimeout  time.Duration
	writeTimeout time.Duration
	log          *zap.Logger
}

// Option configures Dial.
type Option func(*options)

// WithDialTimeout bounds the websocket handshake.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithWriteTimeout bounds each Send.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) { o.writeTimeout = d }
}

// WithLogger sets the logger used for protocol tracing.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// URL turns a host, host:port or ws(s):// address into the endpoint URL.
func URL(addr string) (string, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		u, err := url.Parse(addr)
		if err != nil {
			return "", fmt.Errorf("parse url: %w", err)
		}
		if u.Path == "" {
			u.Path = "/"
		}
		return u.String(), nil
	}
	host := addr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		host = net.JoinHostPort(strings.Trim(addr, "[]"), DefaultPort)
	}
	return "ws://" + host + "/", nil
}

// Dial connects to the preset server at addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	o := options{dialTimeout: 10 * time.Second, writeTimeout: 3 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	u, err := URL(addr)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, o.dialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	// init carries every button; the default 32KiB limit is too small for big rigs.
	conn.SetReadLimit(4 << 20)

	cctx, ccancel := context.WithCancel(context.Background())
	o.log.Info("connected", zap.String("url", u))
	return &Client{
		conn:         conn,
		ctx:          cctx,
		cancel:       ccancel,
		writeTimeout: o.writeTimeout,
		log:          o.log,
	}, nil
}

// Send writes one frame. There is no acknowledgement and no retry.
func (c *Client) Send(event string, data any) error {
	frame, err := Encode(event, data)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.ctx, c.writeTimeout)
	defer cancel()
	if err := c.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	c.log.Debug("→", zap.String("event", event), zap.ByteString("frame", frame))
	return nil
}

// Recv blocks for the next frame. A malformed frame yields an ErrMalformed
// error but the connection stays usable; any other error is terminal.
func (c *Client) Recv() (Message, error) {
	typ, frame, err := c.conn.Read(c.ctx)
	if err != nil {
		return Message{}, fmt.Errorf("recv: %w", err)
	}
	if typ != websocket.MessageText {
		return Message{}, fmt.Errorf("%w: binary frame", ErrMalformed)
	}
	msg, err := DecodeFrame(frame)
	if err != nil {
		return Message{}, err
	}
	c.log.Debug("←", zap.String("event", msg.Event), zap.ByteString("frame", frame))
	return msg, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "bye")
	c.cancel()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		var ce websocket.CloseError
		if !errors.As(err, &ce) {
			return err
		}
	}
	return nil
}
