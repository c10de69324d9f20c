package panels

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zouxin96/vibeStock/internal/widget"
	"github.com/zouxin96/vibeStock/tui/styles"
)

// Level grades a status badge.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelError
)

// Field is one labelled value of a status card.
type Field struct {
	Label string
	Value string
	Class widget.Class
}

// Card is the content of a status panel.
type Card struct {
	Status    string
	Level     Level
	Fields    []Field
	ListTitle string
	List      []Field
	Error     string
}

// StatusConstructor builds a status panel.
type StatusConstructor func(title string) *StatusPanel

// StatusPanel shows a status badge, key/value fields and an optional list.
type StatusPanel struct {
	title  string
	card   Card
	loaded bool

	focused bool
	width   int
	height  int
}

// NewStatusPanel creates a status panel.
func NewStatusPanel(title string) *StatusPanel {
	return &StatusPanel{title: title}
}

func (p *StatusPanel) Update(tea.Msg) tea.Cmd { return nil }

// View renders the panel.
func (p *StatusPanel) View() string {
	body := placeholder(false)
	if p.loaded {
		body = p.body()
	}
	return frame(p.title, p.focused, p.width, p.height, body)
}

func (p *StatusPanel) body() string {
	c := p.card
	var lines []string

	badge := styles.BadgeOKStyle
	switch c.Level {
	case LevelWarn:
		badge = styles.BadgeWarnStyle
	case LevelError:
		badge = styles.BadgeErrorStyle
	}
	lines = append(lines, badge.Render(c.Status))

	labelWidth := 0
	for _, f := range c.Fields {
		labelWidth = max(labelWidth, lipgloss.Width(f.Label))
	}
	for _, f := range c.Fields {
		lines = append(lines, styles.StatusBarDescStyle.Render(pad(f.Label, labelWidth))+"  "+
			styles.ForClass(f.Class).Render(f.Value))
	}

	if c.ListTitle != "" {
		lines = append(lines, styles.HeaderStyle.Render(c.ListTitle))
		if len(c.List) == 0 {
			lines = append(lines, styles.PlaceholderStyle.Render(noDataText))
		}
		nameWidth := 0
		for _, f := range c.List {
			nameWidth = max(nameWidth, lipgloss.Width(f.Label))
		}
		for _, f := range c.List {
			lines = append(lines, "  "+pad(f.Label, nameWidth)+"  "+styles.ForClass(f.Class).Render(f.Value))
		}
	}

	if c.Error != "" {
		lines = append(lines, styles.ErrorStyle.Render("Error: "+c.Error))
	}
	return strings.Join(lines, "\n")
}

// SetCard replaces the card.
func (p *StatusPanel) SetCard(c Card) {
	p.card = c
	p.loaded = true
}

// Card returns the current card.
func (p *StatusPanel) Card() Card { return p.card }

func (p *StatusPanel) SetFocus(focused bool) { p.focused = focused }

func (p *StatusPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}
