// Package bus routes channel-keyed payloads from the feed to the widgets bound to them.
package bus

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Listener receives every payload dispatched to the channel it is bound to.
type Listener func(payload any)

type registration struct {
	id uint64
	fn Listener
}

// ChannelBus maps channel identifiers to listeners.
//
// The slices stored in slots are never mutated in place once published, so
// Dispatch can iterate a snapshot outside the lock.
type ChannelBus struct {
	mu    sync.RWMutex
	slots map[string][]registration
	seq   uint64

	dropped atomic.Int64
	log     zerolog.Logger
}

// New creates an empty bus.
func New(log zerolog.Logger) *ChannelBus {
	return &ChannelBus{
		slots: make(map[string][]registration),
		log:   log,
	}
}

// Subscribe binds l to channel, replacing whatever was bound there before.
func (b *ChannelBus) Subscribe(channel string, l Listener) {
	if channel == "" || l == nil {
		b.log.Debug().Str("channel", channel).Msg("ignoring subscribe without channel or listener")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	b.slots[channel] = []registration{{id: b.seq, fn: l}}
}

// Add appends l after the listeners already bound to channel. The returned
// func removes exactly this registration and may be called any number of times.
func (b *ChannelBus) Add(channel string, l Listener) func() {
	if channel == "" || l == nil {
		b.log.Debug().Str("channel", channel).Msg("ignoring add without channel or listener")
		return func() {}
	}

	b.mu.Lock()
	b.seq++
	id := b.seq
	prev := b.slots[channel]
	next := make([]registration, 0, len(prev)+1)
	next = append(next, prev...)
	b.slots[channel] = append(next, registration{id: id, fn: l})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(channel, id) })
	}
}

func (b *ChannelBus) remove(channel string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.slots[channel]
	for i, r := range regs {
		if r.id != id {
			continue
		}
		if len(regs) == 1 {
			delete(b.slots, channel)
			return
		}
		next := make([]registration, 0, len(regs)-1)
		next = append(next, regs[:i]...)
		b.slots[channel] = append(next, regs[i+1:]...)
		return
	}
}

// Unsubscribe removes every listener bound to channel. Unknown channels are a no-op.
func (b *ChannelBus) Unsubscribe(channel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.slots, channel)
}

// Dispatch hands payload to each listener of channel in registration order,
// synchronously on the calling goroutine. Payloads for channels without
// listeners are dropped and counted.
func (b *ChannelBus) Dispatch(channel string, payload any) {
	b.mu.RLock()
	regs := b.slots[channel]
	b.mu.RUnlock()

	if len(regs) == 0 {
		b.dropped.Add(1)
		return
	}
	for _, r := range regs {
		r.fn(payload)
	}
}

// Dropped returns how many dispatches found no listener.
func (b *ChannelBus) Dropped() int64 {
	return b.dropped.Load()
}

// Listeners returns the number of listeners bound to channel.
func (b *ChannelBus) Listeners(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.slots[channel])
}

// Channels returns the channels that currently have listeners, sorted.
func (b *ChannelBus) Channels() []string {
	b.mu.RLock()
	out := make([]string, 0, len(b.slots))
	for ch := range b.slots {
		out = append(out, ch)
	}
	b.mu.RUnlock()

	sort.Strings(out)
	return out
}
