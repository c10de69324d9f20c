// Package widgettest provides a recording transport for widget tests.
package widgettest

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/zouxin96/vibeStock/internal/bus"
	"github.com/zouxin96/vibeStock/internal/widget"
)

// Sent is one recorded control message.
type Sent struct {
	Kind    string
	Message map[string]any
}

// Transport routes subscriptions through a real bus and records every Send.
type Transport struct {
	*bus.ChannelBus

	mu      sync.Mutex
	sent    []Sent
	sendErr error
}

func NewTransport() *Transport {
	return &Transport{ChannelBus: bus.New(zerolog.Nop())}
}

// Send records the message and returns the configured error.
func (t *Transport) Send(kind string, msg map[string]any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, Sent{Kind: kind, Message: msg})
	return t.sendErr
}

// FailSends makes every later Send return err after recording it.
func (t *Transport) FailSends(err error) {
	t.mu.Lock()
	t.sendErr = err
	t.mu.Unlock()
}

// Sent returns a copy of the recorded messages.
func (t *Transport) Sent() []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Sent(nil), t.sent...)
}

// SentCount returns how many messages were sent.
func (t *Transport) SentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

// Deps returns widget dependencies wired to t and clk.
func Deps(t *Transport, clk clock.Clock, lib *widget.Library) widget.Deps {
	return widget.Deps{
		Transport: t,
		Library:   lib,
		Clock:     clk,
		Logger:    zerolog.Nop(),
	}
}
