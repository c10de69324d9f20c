package socket

import "time"

// Config controls the feed connection.
type Config struct {
	// URL of the feed websocket endpoint.
	URL string

	HandshakeTimeout time.Duration
	WriteWait        time.Duration
	// PongWait is how long the connection may stay silent before it is considered dead.
	PongWait time.Duration
	// PingPeriod must be shorter than PongWait.
	PingPeriod     time.Duration
	ReconnectDelay time.Duration

	// FrameBuffer is the capacity of the reader-to-dispatcher queue.
	FrameBuffer int
	// DropFrames drops frames when the queue is full instead of blocking the reader.
	DropFrames     bool
	MaxMessageSize int64
}

// DefaultConfig returns settings for a feed on the local machine.
func DefaultConfig() Config {
	return Config{
		URL:              "ws://127.0.0.1:8000/ws",
		HandshakeTimeout: 10 * time.Second,
		WriteWait:        10 * time.Second,
		PongWait:         60 * time.Second,
		PingPeriod:       20 * time.Second,
		ReconnectDelay:   3 * time.Second,
		FrameBuffer:      256,
		DropFrames:       false,
		MaxMessageSize:   4 << 20,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.URL == "" {
		c.URL = def.URL
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.WriteWait <= 0 {
		c.WriteWait = def.WriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = def.PongWait
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = c.PongWait / 3
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = def.ReconnectDelay
	}
	if c.FrameBuffer <= 0 {
		c.FrameBuffer = def.FrameBuffer
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	return c
}
