package panels

import (
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zouxin96/vibeStock/tui/styles"
)

// Series is one named line. Values align with the panel's labels.
type Series struct {
	Name   string
	Values []float64
}

// LineConstructor builds a line chart panel.
type LineConstructor func(title string) *LinePanel

// LinePanel plots one or more series against shared category labels.
type LinePanel struct {
	title  string
	labels []string
	series []Series
	loaded bool

	focused bool
	width   int
	height  int
}

// NewLinePanel creates a line chart panel.
func NewLinePanel(title string) *LinePanel {
	return &LinePanel{title: title}
}

func (p *LinePanel) Update(tea.Msg) tea.Cmd { return nil }

// View renders the panel.
func (p *LinePanel) View() string {
	w, h := innerSize(p.width, p.height)
	body := placeholder(p.loaded)
	if len(p.labels) > 0 && len(p.series) > 0 {
		body = p.renderChart(w, h)
	}
	return frame(p.title, p.focused, p.width, p.height, body)
}

func (p *LinePanel) renderChart(width, height int) string {
	cols := min(max(width-10, 2), len(p.labels))
	offset := len(p.labels) - cols

	legend := len(p.series) > 1
	chartHeight := height - 2
	if legend {
		chartHeight--
	}
	chartHeight = max(chartHeight, 3)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range p.series {
		for i := offset; i < len(p.labels) && i < len(s.Values); i++ {
			lo = min(lo, s.Values[i])
			hi = max(hi, s.Values[i])
		}
	}
	if math.IsInf(lo, 0) {
		return placeholder(p.loaded)
	}
	if hi == lo {
		hi, lo = hi+1, lo-1
	}

	toRow := func(v float64) int {
		ratio := (hi - v) / (hi - lo)
		return min(max(int(math.Round(ratio*float64(chartHeight-1))), 0), chartHeight-1)
	}

	grid := make([][]rune, chartHeight)
	owner := make([][]int, chartHeight)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
		owner[r] = make([]int, cols)
	}
	for si, s := range p.series {
		prev := -1
		for c := 0; c < cols; c++ {
			i := offset + c
			if i >= len(s.Values) {
				break
			}
			row := toRow(s.Values[i])
			// Connect to the previous point with a vertical run
			if prev >= 0 && prev != row {
				from, to := min(prev, row), max(prev, row)
				for r := from; r <= to; r++ {
					if grid[r][c] == ' ' {
						grid[r][c] = '│'
						owner[r][c] = si
					}
				}
			}
			grid[row][c] = '•'
			owner[row][c] = si
			prev = row
		}
	}

	var b strings.Builder
	for r := 0; r < chartHeight; r++ {
		label := ""
		switch r {
		case 0:
			label = axisLabel(hi)
		case chartHeight - 1:
			label = axisLabel(lo)
		}
		b.WriteString(styles.ChartAxisStyle.Render(padLeft(label, 8) + " │"))
		for c := 0; c < cols; c++ {
			ch := string(grid[r][c])
			if grid[r][c] != ' ' {
				ch = lipgloss.NewStyle().Foreground(styles.SeriesColor(owner[r][c])).Render(ch)
			}
			b.WriteString(ch)
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.ChartAxisStyle.Render("─────────┴" + strings.Repeat("─", cols)))
	b.WriteString("\n")

	b.WriteString(styles.ChartLabelStyle.Render(timeAxis(p.labels[offset], p.labels[len(p.labels)-1], 10+cols, width)))

	if legend {
		names := make([]string, len(p.series))
		for i, s := range p.series {
			names[i] = lipgloss.NewStyle().Foreground(styles.SeriesColor(i)).Render("• " + s.Name)
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(names, "  "))
	}
	return b.String()
}

// SetData replaces labels and series.
func (p *LinePanel) SetData(labels []string, series []Series) {
	p.labels = labels
	p.series = series
	p.loaded = true
}

// Labels returns the category labels.
func (p *LinePanel) Labels() []string { return p.labels }

// Series returns the plotted series.
func (p *LinePanel) Series() []Series { return p.series }

func (p *LinePanel) SetFocus(focused bool) { p.focused = focused }

func (p *LinePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}
