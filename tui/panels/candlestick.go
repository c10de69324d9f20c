package panels

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zouxin96/vibeStock/tui/styles"
)

// Candle is one OHLC bar.
type Candle struct {
	Label string
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Rising reports whether the bar closed at or above its open.
func (c Candle) Rising() bool {
	return c.Close >= c.Open
}

// CandlestickConstructor builds a candlestick panel.
type CandlestickConstructor func(title string) *CandlestickPanel

// CandlestickPanel displays a candlestick chart.
type CandlestickPanel struct {
	title   string
	candles []Candle
	loaded  bool

	focused bool
	width   int
	height  int
}

// NewCandlestickPanel creates a new candlestick chart panel.
func NewCandlestickPanel(title string) *CandlestickPanel {
	return &CandlestickPanel{title: title}
}

// Update handles messages for the panel.
func (p *CandlestickPanel) Update(tea.Msg) tea.Cmd {
	return nil
}

// View renders the panel.
func (p *CandlestickPanel) View() string {
	w, h := innerSize(p.width, p.height)

	body := placeholder(p.loaded)
	if len(p.candles) > 0 {
		body = p.renderChart(w, h, p.candles)
	}
	return frame(p.title, p.focused, p.width, p.height, body)
}

func (p *CandlestickPanel) renderChart(width, height int, candles []Candle) string {
	// Reserve space: 9 chars for price axis, 1 for separator
	chartWidth := max(width-10, 2)

	// Each candle needs 2 chars: candle, space
	candlesToShow := min(max(chartWidth/2, 1), len(candles))
	displayCandles := candles[len(candles)-candlesToShow:]

	minPrice := displayCandles[0].Low
	maxPrice := displayCandles[0].High
	for _, c := range displayCandles {
		minPrice = min(minPrice, c.Low)
		maxPrice = max(maxPrice, c.High)
	}

	// Add padding to price range (10%)
	priceRange := maxPrice - minPrice
	if priceRange == 0 {
		priceRange = max(maxPrice*0.01, 1)
	}
	padding := priceRange * 0.1
	minPrice -= padding
	maxPrice += padding

	// Reserve 2 rows for the time axis
	chartHeight := max(height-2, 3)

	var result strings.Builder
	for row := 0; row < chartHeight; row++ {
		price := p.yToPrice(row, minPrice, maxPrice, chartHeight)
		result.WriteString(styles.ChartAxisStyle.Render(padLeft(axisLabel(price), 8) + " │"))

		for _, candle := range displayCandles {
			char := p.getCandleChar(candle, row, minPrice, maxPrice, chartHeight)

			style := styles.CandleDownStyle
			if candle.Rising() {
				style = styles.CandleUpStyle
			}
			result.WriteString(style.Render(string(char)))
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}

	// Bottom border
	result.WriteString(styles.ChartAxisStyle.Render("─────────┴" + strings.Repeat("──", len(displayCandles))))
	result.WriteString("\n")

	// Time axis: first and last labels
	first := displayCandles[0].Label
	last := ""
	if len(displayCandles) > 1 {
		last = displayCandles[len(displayCandles)-1].Label
	}
	result.WriteString(styles.ChartLabelStyle.Render(timeAxis(first, last, 10+len(displayCandles)*2, width)))

	return result.String()
}

// timeAxis places first under the chart start and last so that it ends at
// end, or as close after it as width allows.
func timeAxis(first, last string, end, width int) string {
	axis := strings.Repeat(" ", 10) + first
	if last == "" || last == first {
		return axis
	}
	end = max(end, lipgloss.Width(axis)+1+lipgloss.Width(last))
	if end > width {
		return axis
	}
	return axis + strings.Repeat(" ", end-lipgloss.Width(axis)-lipgloss.Width(last)) + last
}

// getCandleChar returns the character to draw for a candle at a given row.
func (p *CandlestickPanel) getCandleChar(candle Candle, row int, minPrice, maxPrice float64, height int) rune {
	rowPrice := p.yToPrice(row, minPrice, maxPrice, height)

	bodyTop := max(candle.Open, candle.Close)
	bodyBottom := min(candle.Open, candle.Close)

	// Tolerance maps continuous prices onto discrete rows
	tolerance := (maxPrice - minPrice) / float64(height*2)

	// Body overwrites wick
	if rowPrice <= bodyTop+tolerance && rowPrice >= bodyBottom-tolerance {
		return '┃'
	}
	if rowPrice <= candle.High+tolerance && rowPrice > bodyTop {
		return '│'
	}
	if rowPrice >= candle.Low-tolerance && rowPrice < bodyBottom {
		return '│'
	}
	return ' '
}

func (p *CandlestickPanel) yToPrice(y int, minPrice, maxPrice float64, height int) float64 {
	if height <= 1 {
		return minPrice
	}
	ratio := float64(y) / float64(height-1)
	return maxPrice - ratio*(maxPrice-minPrice)
}

// axisLabel formats an axis price with precision suited to its magnitude.
func axisLabel(v float64) string {
	switch {
	case v >= 10000 || v <= -10000:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case v >= 100 || v <= -100:
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

// SetCandles replaces the candle data.
func (p *CandlestickPanel) SetCandles(candles []Candle) {
	p.candles = candles
	p.loaded = true
}

// Candles returns the current candle data.
func (p *CandlestickPanel) Candles() []Candle {
	return p.candles
}

// SetFocus sets the focus state of the panel.
func (p *CandlestickPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *CandlestickPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}
