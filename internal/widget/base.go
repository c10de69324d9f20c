package widget

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zouxin96/vibeStock/internal/layout"
)

// Base carries what every concrete widget shares: its layout instance, its
// dependencies and the channel binding. Concrete widgets embed *Base and
// implement Activate in terms of Bind.
type Base struct {
	inst         layout.Instance
	deps         Deps
	log          zerolog.Logger
	defaultTitle string

	mu       sync.Mutex
	active   bool
	channel  string
	cleanups []func()
	updated  time.Time
}

// NewBase prepares the shared state for a widget built from inst.
func NewBase(inst layout.Instance, deps Deps, defaultTitle string) *Base {
	return &Base{
		inst:         inst,
		deps:         deps,
		defaultTitle: defaultTitle,
		log: deps.Logger.With().
			Str("widget", inst.WidgetID).
			Str("kind", inst.Kind).
			Logger(),
	}
}

func (b *Base) ID() string                { return b.inst.WidgetID }
func (b *Base) Kind() string              { return b.inst.Kind }
func (b *Base) Instance() layout.Instance { return b.inst }
func (b *Base) Deps() Deps                { return b.deps }
func (b *Base) Logger() zerolog.Logger    { return b.log }

func (b *Base) Title() string {
	if b.inst.Title != "" {
		return b.inst.Title
	}
	return b.defaultTitle
}

// ModuleChannel is the shared module topic, falling back to the instance id.
func (b *Base) ModuleChannel() string {
	return b.inst.ModuleChannel()
}

// Active reports whether the widget is bound.
func (b *Base) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Channel returns the channel the widget is bound to, if any.
func (b *Base) Channel() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channel
}

// Updated returns when data last arrived.
func (b *Base) Updated() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updated
}

// Bind subscribes handler to channel. Every payload is handed to handler and
// then the UI is asked to redraw. Payloads arriving after Release are ignored.
func (b *Base) Bind(channel string, handler func(payload any)) error {
	if channel == "" {
		return ErrNoChannel
	}

	b.mu.Lock()
	prev := b.channel
	b.channel = channel
	b.active = true
	b.mu.Unlock()

	if b.deps.Transport == nil {
		b.log.Warn().Str("channel", channel).Msg("no transport, widget stays empty")
		return nil
	}
	if prev != "" && prev != channel {
		b.deps.Transport.Unsubscribe(prev)
	}

	b.deps.Transport.Subscribe(channel, func(payload any) {
		b.mu.Lock()
		live := b.active && b.channel == channel
		if live {
			b.updated = b.deps.Now()
		}
		b.mu.Unlock()
		if !live {
			return
		}

		handler(payload)
		if b.deps.Notify != nil {
			b.deps.Notify(channel)
		}
	})
	b.log.Debug().Str("channel", channel).Msg("bound")
	return nil
}

// Defer registers fn to run on Release.
func (b *Base) Defer(fn func()) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.cleanups = append(b.cleanups, fn)
	b.mu.Unlock()
}

// Release unsubscribes and runs deferred cleanups. It is idempotent.
func (b *Base) Release() {
	b.mu.Lock()
	channel := b.channel
	cleanups := b.cleanups
	b.active = false
	b.channel = ""
	b.cleanups = nil
	b.mu.Unlock()

	if channel != "" && b.deps.Transport != nil {
		b.deps.Transport.Unsubscribe(channel)
		b.log.Debug().Str("channel", channel).Msg("released")
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// Deactivate implements Widget.
func (b *Base) Deactivate() {
	b.Release()
}
