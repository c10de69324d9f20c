package widgets

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zouxin96/vibeStock/internal/layout"
	"github.com/zouxin96/vibeStock/internal/widget"
)

const (
	subscribeKind    = "subscribe"
	updateConfigKind = "update_config"
	editHint         = "e: edit codes"
)

var (
	editKey    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit codes"))
	confirmKey = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save"))
	cancelKey  = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
)

// Watchlist shows quotes for a user-chosen set of codes. The feed publishes
// them on a channel named after the instance, once the widget has announced
// itself with a subscribe message.
type Watchlist struct {
	*tableWidget

	codes   []string
	editing bool
	input   textinput.Model
	// cancelResend drops the pending subscribe resend.
	cancelResend func()
}

// NewWatchlist builds a watchlist widget.
func NewWatchlist(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	cols := []widget.Column{
		widget.Plain("code", "Code").WithClass(widget.ClassCode),
		widget.Plain("name", "Name"),
		widget.Computed("price", "Price", widget.Fixed(2), nil).WithClass(widget.ClassPrice),
		widget.Computed("change", "Chg", widget.SignedPercent(2), widget.ByChange),
	}
	t, err := newTableWidget(inst, deps, "Watchlist", inst.WidgetID, cols, 0)
	if err != nil {
		return nil, err
	}

	in := textinput.New()
	in.Prompt = "codes> "
	in.Placeholder = "600519.SH,000001.SZ"
	in.CharLimit = 512

	w := &Watchlist{
		tableWidget: t,
		codes:       inst.ConfigStrings("codes"),
		input:       in,
	}
	w.panel.SetFooter(editHint)
	return w, nil
}

// Activate binds the instance channel and announces the widget to the feed.
func (w *Watchlist) Activate(context.Context) error {
	if err := w.Bind(w.ID(), w.apply); err != nil {
		return err
	}
	cancel := widget.SendWithRetry(w.Deps(), subscribeKind, w.message(w.Codes()), 0)
	w.mu.Lock()
	w.cancelResend = cancel
	w.mu.Unlock()
	w.Defer(cancel)
	return nil
}

// Codes returns the codes currently watched.
func (w *Watchlist) Codes() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.codes...)
}

// Capturing reports whether the code editor owns the keyboard.
func (w *Watchlist) Capturing() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.editing
}

func (w *Watchlist) message(codes []string) map[string]any {
	cfg := make(map[string]any, len(w.Instance().Config)+1)
	for k, v := range w.Instance().Config {
		cfg[k] = v
	}
	cfg["codes"] = codes
	return map[string]any{
		"widgetId": w.ID(),
		"moduleId": w.Instance().ModuleID,
		"config":   cfg,
	}
}

func (w *Watchlist) Update(msg tea.Msg) tea.Cmd {
	w.mu.Lock()
	defer w.mu.Unlock()

	keyMsg, isKey := msg.(tea.KeyMsg)
	if !w.editing {
		if isKey && key.Matches(keyMsg, editKey) {
			w.editing = true
			w.input.SetValue(strings.Join(w.codes, ","))
			w.input.CursorEnd()
			w.panel.SetFooter(w.input.View())
			return w.input.Focus()
		}
		return w.panel.Update(msg)
	}

	if isKey {
		switch {
		case key.Matches(keyMsg, confirmKey):
			w.codes = parseCodes(w.input.Value())
			w.stopEditing()
			// A late subscribe would carry the old codes
			if w.cancelResend != nil {
				w.cancelResend()
				w.cancelResend = nil
			}
			return w.sendConfig(w.message(append([]string(nil), w.codes...)))
		case key.Matches(keyMsg, cancelKey):
			w.stopEditing()
			return nil
		}
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	w.panel.SetFooter(w.input.View())
	return cmd
}

func (w *Watchlist) stopEditing() {
	w.editing = false
	w.input.Blur()
	w.panel.SetFooter(editHint)
}

// sendConfig pushes the new code list off the UI loop.
func (w *Watchlist) sendConfig(msg map[string]any) tea.Cmd {
	transport := w.Deps().Transport
	if transport == nil {
		return nil
	}
	log := w.Logger()
	return func() tea.Msg {
		if err := transport.Send(updateConfigKind, msg); err != nil {
			log.Warn().Err(err).Msg("code list not sent")
		}
		return nil
	}
}

// parseCodes splits a comma separated list, dropping blanks and duplicates.
func parseCodes(s string) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, part := range strings.Split(s, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

var _ widget.Capturer = (*Watchlist)(nil)
