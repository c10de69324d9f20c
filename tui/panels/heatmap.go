package panels

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zouxin96/vibeStock/internal/format"
	"github.com/zouxin96/vibeStock/tui/styles"
)

const (
	tileBaseWidth = 12
	tileMaxWidth  = 30
)

// Tile is one heatmap block.
type Tile struct {
	Name   string
	Change float64
	// Weight widens the tile; in the limit-up heatmap it is the board weight.
	Weight float64
}

// TileWidth grows with weight and is capped.
func TileWidth(weight float64) int {
	return min(tileBaseWidth+int(max(weight, 0)*2), tileMaxWidth)
}

// TileColor picks the background of a tile from its change.
func TileColor(change float64) lipgloss.Color {
	switch {
	case change >= 2:
		return styles.StrongUpColor
	case change > 0:
		return styles.UpColor
	case change <= -2:
		return styles.StrongDownColor
	case change < 0:
		return styles.DownColor
	default:
		return styles.FlatColor
	}
}

// HeatmapConstructor builds a heatmap panel.
type HeatmapConstructor func(title string) *HeatmapPanel

// HeatmapPanel flows colored tiles across the panel.
type HeatmapPanel struct {
	title  string
	tiles  []Tile
	loaded bool

	focused bool
	width   int
	height  int
}

// NewHeatmapPanel creates a heatmap panel.
func NewHeatmapPanel(title string) *HeatmapPanel {
	return &HeatmapPanel{title: title}
}

func (p *HeatmapPanel) Update(tea.Msg) tea.Cmd { return nil }

// View renders the panel.
func (p *HeatmapPanel) View() string {
	w, _ := innerSize(p.width, p.height)
	body := placeholder(p.loaded)
	if len(p.tiles) > 0 {
		body = p.renderTiles(w)
	}
	return frame(p.title, p.focused, p.width, p.height, body)
}

func (p *HeatmapPanel) renderTiles(width int) string {
	var (
		lines []string
		line  []string
		used  int
	)
	for _, t := range p.tiles {
		tw := min(TileWidth(t.Weight), width)
		if used > 0 && used+1+tw > width {
			lines = append(lines, strings.Join(line, " "))
			line, used = nil, 0
		}

		change := format.SignedPercent(t.Change, 2)
		text := truncate(t.Name, max(tw-lipgloss.Width(change)-1, 0)) + " " + change
		style := lipgloss.NewStyle().
			Foreground(styles.TextColor).
			Background(TileColor(t.Change))
		line = append(line, style.Render(pad(truncate(text, tw), tw)))
		if used > 0 {
			used++
		}
		used += tw
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}
	return strings.Join(lines, "\n")
}

// SetTiles replaces the tiles.
func (p *HeatmapPanel) SetTiles(tiles []Tile) {
	p.tiles = tiles
	p.loaded = true
}

// Tiles returns the current tiles.
func (p *HeatmapPanel) Tiles() []Tile { return p.tiles }

func (p *HeatmapPanel) SetFocus(focused bool) { p.focused = focused }

func (p *HeatmapPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}
