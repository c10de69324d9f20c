package feed

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/zouxin96/vibeStock/internal/socket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 << 10

	pingText = "ping"
	pongText = "pong"
)

// ErrHubClosed is returned by Broadcast after Close.
var ErrHubClosed = errors.New("feed: hub closed")

// ControlHandler receives decoded control messages. kind is the message's
// "type" field.
type ControlHandler func(clientID, kind string, msg map[string]any)

// Hub keeps the connected dashboards and fans frames out to them.
type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger
	clock    clock.Clock
	buffer   int

	mu        sync.RWMutex
	clients   map[string]*client
	last      map[string]time.Time
	onControl ControlHandler

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. buffer is the per-client queue length.
func NewHub(buffer int, clk clock.Clock, log zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultConfig().ClientBuffer
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		log:     log,
		clock:   clk,
		buffer:  buffer,
		clients: make(map[string]*client),
		last:    make(map[string]time.Time),
		closed:  make(chan struct{}),
	}
}

// OnControl sets the handler for control messages.
func (h *Hub) OnControl(fn ControlHandler) {
	h.mu.Lock()
	h.onControl = fn
	h.mu.Unlock()
}

// Serve upgrades the request and runs the client until it disconnects.
func (h *Hub) Serve(c *gin.Context) {
	select {
	case <-h.closed:
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(errors.Wrap(err, "upgrade")).Msg("websocket upgrade failed")
		return
	}

	cl := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	select {
	case <-h.closed:
		h.mu.Unlock()
		_ = conn.Close()
		return
	default:
	}
	h.clients[cl.id] = cl
	total := len(h.clients)
	h.wg.Add(2)
	h.mu.Unlock()
	h.log.Info().Str("client_id", cl.id).Int("total_clients", total).Msg("client connected")

	go h.writePump(cl)
	go h.readPump(cl)
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl.id]; ok {
		delete(h.clients, cl.id)
		close(cl.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Info().Str("client_id", cl.id).Int("total_clients", total).Msg("client disconnected")
}

// readPump answers text pings and forwards control messages.
func (h *Hub) readPump(cl *client) {
	defer func() {
		h.unregister(cl)
		_ = cl.conn.Close()
		h.wg.Done()
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("client_id", cl.id).Msg("read failed")
			}
			return
		}
		_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))

		if string(data) == pingText {
			h.enqueue(cl, []byte(pongText))
			continue
		}
		h.control(cl.id, data)
	}
}

func (h *Hub) control(clientID string, data []byte) {
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		h.log.Debug().Err(err).Str("client_id", clientID).Msg("ignoring malformed message")
		return
	}
	kind, _ := msg["type"].(string)
	if kind == "" {
		h.log.Debug().Str("client_id", clientID).Msg("ignoring message without type")
		return
	}

	h.mu.RLock()
	fn := h.onControl
	h.mu.RUnlock()
	if fn != nil {
		fn(clientID, kind, msg)
	}
}

// writePump drains the client queue and keeps the connection alive.
func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
		h.wg.Done()
	}()

	for {
		select {
		case data, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue queues data for cl. A client whose queue is full is disconnected.
func (h *Hub) enqueue(cl *client, data []byte) {
	h.mu.RLock()
	_, ok := h.clients[cl.id]
	sent := false
	if ok {
		select {
		case cl.send <- data:
			sent = true
		default:
		}
	}
	h.mu.RUnlock()

	if ok && !sent {
		h.log.Warn().Str("client_id", cl.id).Msg("client too slow, disconnecting")
		h.unregister(cl)
	}
}

// Broadcast sends an update frame for channel to every client and records
// the time of the update.
func (h *Hub) Broadcast(channel string, data any) error {
	select {
	case <-h.closed:
		return ErrHubClosed
	default:
	}

	frame, err := socket.EncodeUpdate(channel, data)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.last[channel] = h.clock.Now()
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		h.enqueue(cl, frame)
	}
	return nil
}

// LastUpdates returns when each channel was last broadcast.
func (h *Hub) LastUpdates() map[string]time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]time.Time, len(h.last))
	for k, v := range h.last {
		out[k] = v
	}
	return out
}

// ClientIDs returns the connected client ids, sorted.
func (h *Hub) ClientIDs() []string {
	h.mu.RLock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their goroutines.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		close(h.closed)
		for id, cl := range h.clients {
			delete(h.clients, id)
			close(cl.send)
		}
		h.mu.Unlock()
	})
	h.wg.Wait()
}
