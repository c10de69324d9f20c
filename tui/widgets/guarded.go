package widgets

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zouxin96/vibeStock/internal/widget"
)

// guarded serializes access to a panel. Feed payloads are applied on the
// socket dispatcher goroutine while the UI loop renders.
type guarded[P widget.Panel] struct {
	mu    sync.RWMutex
	panel P
}

func guard[P widget.Panel](p P) *guarded[P] {
	return &guarded[P]{panel: p}
}

// write runs fn with exclusive access to the panel.
func (g *guarded[P]) write(fn func(p P)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.panel)
}

// read runs fn with shared access to the panel.
func (g *guarded[P]) read(fn func(p P)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(g.panel)
}

func (g *guarded[P]) Update(msg tea.Msg) tea.Cmd {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.panel.Update(msg)
}

func (g *guarded[P]) View() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.panel.View()
}

func (g *guarded[P]) SetSize(width, height int) {
	g.write(func(p P) { p.SetSize(width, height) })
}

func (g *guarded[P]) SetFocus(focused bool) {
	g.write(func(p P) { p.SetFocus(focused) })
}
