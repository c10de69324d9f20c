// Package socket connects the dashboard to the feed websocket and turns its
// frames into channel dispatches on a bus.
package socket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/zouxin96/vibeStock/internal/bus"
)

var (
	ErrNotConnected   = errors.New("socket: not connected")
	ErrEmptyKind      = errors.New("socket: empty message kind")
	ErrAlreadyStarted = errors.New("socket: client already started")
	ErrClosed         = errors.New("socket: client closed")
)

// Client keeps one websocket connection to the feed alive and forwards every
// update frame to the bus.
type Client struct {
	cfg    Config
	bus    *bus.ChannelBus
	log    zerolog.Logger
	dialer websocket.Dialer

	// connMu guards conn and serializes writes.
	connMu sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc

	frames        chan Frame
	droppedFrames atomic.Int64

	updMu      sync.RWMutex
	lastUpdate map[string]time.Time

	started   atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewClient creates a client that dispatches onto b. Call Start to connect.
func NewClient(cfg Config, b *bus.ChannelBus, log zerolog.Logger) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg: cfg,
		bus: b,
		log: log,
		dialer: websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		frames:     make(chan Frame, cfg.FrameBuffer),
		lastUpdate: make(map[string]time.Time),
		closed:     make(chan struct{}),
	}
}

// Start launches the connect loop and returns immediately.
func (c *Client) Start(ctx context.Context) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	c.connMu.Lock()
	c.cancel = cancel
	c.connMu.Unlock()

	c.wg.Add(2)
	go c.runDispatcher()
	go c.runConnector(ctx)
	return nil
}

// Subscribe binds l to channel on the underlying bus.
func (c *Client) Subscribe(channel string, l bus.Listener) {
	c.bus.Subscribe(channel, l)
}

// Unsubscribe removes the listeners of channel from the underlying bus.
func (c *Client) Unsubscribe(channel string) {
	c.bus.Unsubscribe(channel)
}

// Send writes one control message to the feed.
func (c *Client) Send(kind string, msg map[string]any) error {
	data, err := EncodeControl(kind, msg)
	if err != nil {
		return err
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
	return pkgerrors.Wrapf(c.conn.WriteMessage(websocket.TextMessage, data), "send %s", kind)
}

// Connected reports whether a connection is currently up.
func (c *Client) Connected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn != nil
}

// DroppedFrames returns how many frames were dropped on a full queue.
func (c *Client) DroppedFrames() int64 {
	return c.droppedFrames.Load()
}

// LastUpdate returns when channel last received a frame.
func (c *Client) LastUpdate(channel string) (time.Time, bool) {
	c.updMu.RLock()
	defer c.updMu.RUnlock()
	t, ok := c.lastUpdate[channel]
	return t, ok
}

// Close stops the client and waits for its goroutines.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)

		c.connMu.Lock()
		if c.cancel != nil {
			c.cancel()
		}
		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait))
			_ = c.conn.Close()
		}
		c.connMu.Unlock()
	})
	c.wg.Wait()
}

func (c *Client) runConnector(ctx context.Context) {
	defer c.wg.Done()

	for {
		conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warn().Err(err).Str("url", c.cfg.URL).Msg("feed unreachable, retrying")
			}
		} else {
			c.serve(conn)
		}

		timer := time.NewTimer(c.cfg.ReconnectDelay)
		select {
		case <-c.closed:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// serve runs one connection until it drops.
func (c *Client) serve(conn *websocket.Conn) {
	c.connMu.Lock()
	select {
	case <-c.closed:
		c.connMu.Unlock()
		_ = conn.Close()
		return
	default:
	}
	c.conn = conn
	c.connMu.Unlock()
	c.log.Info().Str("url", c.cfg.URL).Msg("connected to feed")

	done := make(chan struct{})
	pingDone := make(chan struct{})
	go func() {
		defer close(pingDone)
		c.pingLoop(conn, done)
	}()

	c.readLoop(conn)
	close(done)
	<-pingDone

	c.connMu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.connMu.Unlock()
	_ = conn.Close()
}

func (c *Client) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
			default:
				c.log.Warn().Err(err).Msg("feed connection lost")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))

		if string(data) == pongText {
			continue
		}
		frame, err := DecodeFrame(data)
		if err != nil {
			c.log.Debug().Err(err).Msg("ignoring malformed frame")
			continue
		}
		if !frame.IsUpdate() {
			continue
		}
		c.enqueue(frame)
	}
}

func (c *Client) enqueue(f Frame) {
	if c.cfg.DropFrames {
		select {
		case c.frames <- f:
		default:
			c.droppedFrames.Add(1)
		}
		return
	}
	select {
	case c.frames <- f:
	case <-c.closed:
	}
}

func (c *Client) runDispatcher() {
	defer c.wg.Done()
	for {
		select {
		case <-c.closed:
			return
		case f := <-c.frames:
			c.deliver(f)
		}
	}
}

func (c *Client) deliver(f Frame) {
	c.updMu.Lock()
	c.lastUpdate[f.WidgetID] = time.Now()
	c.updMu.Unlock()

	c.bus.Dispatch(f.WidgetID, f.Data)
}

func (c *Client) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.closed:
			return
		case <-ticker.C:
			c.connMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			err := conn.WriteMessage(websocket.TextMessage, []byte(pingText))
			c.connMu.Unlock()
			if err != nil {
				c.log.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}
