// Package feed is a demo market feed: a websocket hub speaking the dashboard
// wire format, and a simulator publishing random-walk data on every channel.
package feed

import "time"

// Config controls the demo feed server.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string
	// Interval between simulator ticks.
	Interval time.Duration
	// Seed for the simulator. Zero picks one from the clock.
	Seed int64
	// ClientBuffer is the number of frames queued per client before it is dropped.
	ClientBuffer int
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns settings matching the dashboard defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8000",
		Interval:        3 * time.Second,
		ClientBuffer:    64,
		ShutdownTimeout: 5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.ClientBuffer <= 0 {
		c.ClientBuffer = def.ClientBuffer
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	return c
}
