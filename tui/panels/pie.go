package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zouxin96/vibeStock/tui/styles"
)

// Slice is one share of a pie.
type Slice struct {
	Name  string
	Value float64
}

// PieConstructor builds a pie panel.
type PieConstructor func(title string) *PiePanel

// PiePanel shows shares of a whole as proportional bars.
type PiePanel struct {
	title  string
	slices []Slice
	loaded bool

	focused bool
	width   int
	height  int
}

// NewPiePanel creates a pie panel.
func NewPiePanel(title string) *PiePanel {
	return &PiePanel{title: title}
}

func (p *PiePanel) Update(tea.Msg) tea.Cmd { return nil }

// View renders the panel.
func (p *PiePanel) View() string {
	w, h := innerSize(p.width, p.height)
	return frame(p.title, p.focused, p.width, p.height, p.body(w, h))
}

func (p *PiePanel) body(width, height int) string {
	total := 0.0
	for _, s := range p.slices {
		if s.Value > 0 {
			total += s.Value
		}
	}
	if len(p.slices) == 0 || total == 0 {
		return placeholder(p.loaded)
	}

	nameWidth := 0
	for _, s := range p.slices {
		nameWidth = max(nameWidth, lipgloss.Width(s.Name))
	}
	nameWidth = min(nameWidth, 12)
	barWidth := max(width-nameWidth-9, 4)

	slices := p.slices
	if len(slices) > height {
		slices = slices[:height]
	}

	lines := make([]string, 0, len(slices))
	for i, s := range slices {
		share := max(s.Value, 0) / total
		filled := int(share*float64(barWidth) + 0.5)
		bar := lipgloss.NewStyle().Foreground(styles.SeriesColor(i)).Render(strings.Repeat("█", filled)) +
			styles.ChartAxisStyle.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, fmt.Sprintf("%s %s %6.1f%%", pad(truncate(s.Name, nameWidth), nameWidth), bar, share*100))
	}
	return strings.Join(lines, "\n")
}

// SetSlices replaces the slices.
func (p *PiePanel) SetSlices(slices []Slice) {
	p.slices = slices
	p.loaded = true
}

// Slices returns the current slices.
func (p *PiePanel) Slices() []Slice {
	return p.slices
}

func (p *PiePanel) SetFocus(focused bool) { p.focused = focused }

func (p *PiePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}
