package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zouxin96/vibeStock/internal/widget"
	"github.com/zouxin96/vibeStock/tui/styles"
)

// Status reports transport health for the status bar.
type Status interface {
	Connected() bool
	DroppedFrames() int64
}

// RefreshMsg asks the dashboard to redraw after a widget received data.
type RefreshMsg struct {
	Channel string
}

// tickMsg is sent periodically to refresh the clock.
type tickMsg struct{}

// Notifier forwards widget notifications to a running program. It can be
// handed to widgets before the program exists.
type Notifier struct {
	mu sync.RWMutex
	p  *tea.Program
}

// Attach sets the program that receives refresh messages.
func (n *Notifier) Attach(p *tea.Program) {
	n.mu.Lock()
	n.p = p
	n.mu.Unlock()
}

// Notify sends a RefreshMsg for channel. It is a no-op until Attach.
func (n *Notifier) Notify(channel string) {
	n.mu.RLock()
	p := n.p
	n.mu.RUnlock()
	if p != nil {
		p.Send(RefreshMsg{Channel: channel})
	}
}

type keyMap struct {
	Quit     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Jump     key.Binding
	ForceOut key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceOut: key.NewBinding(key.WithKeys("ctrl+c")),
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
	Jump:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "jump")),
}

// Model is the dashboard. It lays mounted widgets out in a grid and routes
// keys to the focused one.
type Model struct {
	host    *widget.Host
	widgets []widget.Widget
	status  Status
	clock   clock.Clock

	focused int

	// Window dimensions
	width  int
	height int
	ready  bool

	refreshes int
	quitting  bool
}

// NewModel creates the dashboard over the widgets mounted on host.
func NewModel(host *widget.Host, status Status, clk clock.Clock) *Model {
	if clk == nil {
		clk = clock.New()
	}
	m := &Model{
		host:    host,
		widgets: host.Widgets(),
		status:  status,
		clock:   clk,
	}
	m.setFocus(0)
	return m
}

// Init starts the clock tick.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		return m, nil

	case RefreshMsg:
		m.refreshes++
		return m, nil

	case tickMsg:
		return m, m.tick()
	}

	// Anything else (cursor blinks and the like) belongs to the focused widget
	if w := m.Focused(); w != nil {
		return m, w.Update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.ForceOut) {
		return m.quit()
	}

	w := m.Focused()
	if c, ok := w.(widget.Capturer); ok && c.Capturing() {
		return w.Update(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Next):
		m.setFocus(m.focused + 1)
	case key.Matches(msg, keys.Prev):
		m.setFocus(m.focused - 1)
	case key.Matches(msg, keys.Jump):
		if i := int(msg.String()[0] - '1'); i < len(m.widgets) {
			m.setFocus(i)
		}
	default:
		if w != nil {
			return w.Update(msg)
		}
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	if !m.quitting {
		m.quitting = true
		m.host.UnmountAll()
	}
	return tea.Quit
}

func (m *Model) setFocus(i int) {
	n := len(m.widgets)
	if n == 0 {
		return
	}
	i = ((i % n) + n) % n
	for j, w := range m.widgets {
		w.SetFocus(j == i)
	}
	m.focused = i
}

// Focused returns the widget that receives keys, or nil when there is none.
func (m *Model) Focused() widget.Widget {
	if len(m.widgets) == 0 {
		return nil
	}
	return m.widgets[m.focused]
}

// Refreshes counts redraws requested by widgets.
func (m *Model) Refreshes() int { return m.refreshes }

// columns picks how many widgets share a row at the current width.
func (m *Model) columns() int {
	switch {
	case m.width >= 150:
		return 3
	case m.width >= 90:
		return 2
	default:
		return 1
	}
}

func (m *Model) layout() {
	n := len(m.widgets)
	if n == 0 {
		return
	}
	cols := min(m.columns(), n)
	rows := (n + cols - 1) / cols
	cellHeight := max((m.height-1)/rows, 6)

	for i, w := range m.widgets {
		cellWidth := m.width / cols
		// The last column absorbs the remainder
		if i%cols == cols-1 {
			cellWidth = m.width - (cols-1)*(m.width/cols)
		}
		w.SetSize(cellWidth, cellHeight)
	}
}

// View renders the dashboard.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if len(m.widgets) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.PlaceholderStyle.Render("No widgets mounted. Check the layout file."),
			m.renderStatusBar())
	}

	cols := min(m.columns(), len(m.widgets))
	var rows []string
	for start := 0; start < len(m.widgets); start += cols {
		end := min(start+cols, len(m.widgets))
		cells := make([]string, 0, end-start)
		for _, w := range m.widgets[start:end] {
			cells = append(cells, w.View())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	rows = append(rows, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderStatusBar() string {
	conn := styles.OfflineStyle.Render("○ offline")
	var dropped int64
	if m.status != nil {
		if m.status.Connected() {
			conn = styles.OnlineStyle.Render("● online")
		}
		dropped = m.status.DroppedFrames()
	}

	help := []string{
		styles.StatusBarKeyStyle.Render("tab") + styles.StatusBarDescStyle.Render(" focus"),
		styles.StatusBarKeyStyle.Render("1-9") + styles.StatusBarDescStyle.Render(" jump"),
		styles.StatusBarKeyStyle.Render("←→") + styles.StatusBarDescStyle.Render(" page"),
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"),
	}

	parts := []string{
		conn,
		fmt.Sprintf("dropped %d", dropped),
		fmt.Sprintf("widgets %d", len(m.widgets)),
		strings.Join(help, " │ "),
		m.clock.Now().Format("15:04:05"),
	}
	return styles.StatusBarStyle.Width(m.width).Render(strings.Join(parts, " │ "))
}
