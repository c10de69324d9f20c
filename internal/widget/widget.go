// Package widget defines the dashboard widget contract: how a widget is
// built from a layout instance, bound to a feed channel, and released.
package widget

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/zouxin96/vibeStock/internal/bus"
)

var (
	ErrDuplicateKind = errors.New("widget: kind already registered")
	ErrUnknownKind   = errors.New("widget: unknown kind")
	ErrMissingBase   = errors.New("widget: base component missing")
	ErrNoChannel     = errors.New("widget: empty channel")
)

// Transport is the feed as seen by widgets. *socket.Client satisfies it.
type Transport interface {
	Subscribe(channel string, l bus.Listener)
	Unsubscribe(channel string)
	Send(kind string, msg map[string]any) error
}

// Deps are the collaborators handed to every widget factory.
type Deps struct {
	// Transport may be nil, in which case widgets never receive data.
	Transport Transport
	Library   *Library
	Clock     clock.Clock
	Logger    zerolog.Logger
	// Notify asks the UI to redraw after channel delivered data. May be nil.
	Notify func(channel string)
	// RetryDelay is the pause before a control message is sent a second time.
	RetryDelay time.Duration
	// PageSize is the default row count per table page.
	PageSize int
}

func (d Deps) clock() clock.Clock {
	if d.Clock == nil {
		return clock.New()
	}
	return d.Clock
}

// Now returns the current time on the injected clock.
func (d Deps) Now() time.Time {
	return d.clock().Now()
}

// Panel is the rendering half of a widget, driven by the Bubble Tea loop.
type Panel interface {
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	SetFocus(focused bool)
}

// Widget is a mounted dashboard tile.
type Widget interface {
	ID() string
	Kind() string
	Title() string
	// Activate binds the widget to its channel. It is called once per mount.
	Activate(ctx context.Context) error
	// Deactivate releases everything Activate acquired. It is safe to call
	// when Activate failed or never ran.
	Deactivate()
	Active() bool
	Panel
}

// Capturer is implemented by widgets that sometimes need every key, such as
// while editing text.
type Capturer interface {
	Capturing() bool
}
