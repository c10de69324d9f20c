package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zouxin96/vibeStock/internal/widget"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#3B82F6") // Blue
	AccentColor  = lipgloss.Color("#F59E0B") // Amber
	InfoColor    = lipgloss.Color("#22D3EE") // Cyan

	// A-share convention: red rises, green falls
	UpColor         = lipgloss.Color("#EF4444")
	StrongUpColor   = lipgloss.Color("#B91C1C")
	DownColor       = lipgloss.Color("#10B981")
	StrongDownColor = lipgloss.Color("#047857")
	FlatColor       = lipgloss.Color("#6B7280")

	BackgroundColor  = lipgloss.Color("#1F2937")
	BorderColor      = lipgloss.Color("#374151")
	FocusBorderColor = lipgloss.Color("#3B82F6")

	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

// SeriesColors cycles through chart series and pie slices.
var SeriesColors = []lipgloss.Color{
	lipgloss.Color("#3B82F6"),
	lipgloss.Color("#F59E0B"),
	lipgloss.Color("#10B981"),
	lipgloss.Color("#EF4444"),
	lipgloss.Color("#8B5CF6"),
	lipgloss.Color("#22D3EE"),
	lipgloss.Color("#EC4899"),
	lipgloss.Color("#84CC16"),
}

// SeriesColor returns the color of the i-th series.
func SeriesColor(i int) lipgloss.Color {
	return SeriesColors[i%len(SeriesColors)]
}

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondaryColor)

	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	FooterStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(TextMutedColor).
				Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(UpColor)
)

// Value styles, one per widget.Class
var (
	UpStyle     = lipgloss.NewStyle().Foreground(UpColor)
	DownStyle   = lipgloss.NewStyle().Foreground(DownColor)
	FlatStyle   = lipgloss.NewStyle().Foreground(FlatColor)
	PriceStyle  = lipgloss.NewStyle().Foreground(TextColor).Bold(true)
	AccentStyle = lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	InfoStyle   = lipgloss.NewStyle().Foreground(InfoColor)
	MutedStyle  = lipgloss.NewStyle().Foreground(TextMutedColor)
	CodeStyle   = lipgloss.NewStyle().Foreground(TextSecondaryColor)
)

var classStyles = map[widget.Class]lipgloss.Style{
	widget.ClassUp:     UpStyle,
	widget.ClassDown:   DownStyle,
	widget.ClassFlat:   FlatStyle,
	widget.ClassPrice:  PriceStyle,
	widget.ClassAccent: AccentStyle,
	widget.ClassInfo:   InfoStyle,
	widget.ClassMuted:  MutedStyle,
	widget.ClassCode:   CodeStyle,
}

// ForClass returns the style of a semantic class. ClassNone gets RowStyle.
func ForClass(c widget.Class) lipgloss.Style {
	if s, ok := classStyles[c]; ok {
		return s
	}
	return RowStyle
}

// Chart styles
var (
	CandleUpStyle   = lipgloss.NewStyle().Foreground(UpColor)
	CandleDownStyle = lipgloss.NewStyle().Foreground(DownColor)

	ChartAxisStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	ChartLabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)
)

// Status badges
var (
	BadgeOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#052E16")).
			Background(DownColor).
			Padding(0, 1)

	BadgeWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1F2937")).
			Background(AccentColor).
			Padding(0, 1)

	BadgeErrorStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(UpColor).
			Padding(0, 1)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	StatusBarDescStyle = lipgloss.NewStyle().
				Foreground(TextSecondaryColor)

	OnlineStyle  = lipgloss.NewStyle().Foreground(DownColor).Bold(true)
	OfflineStyle = lipgloss.NewStyle().Foreground(UpColor).Bold(true)
)

// RenderTitle renders a panel title bar.
func RenderTitle(title string, focused bool) string {
	style := TitleStyle
	if focused {
		style = style.Foreground(FocusBorderColor)
	}
	return style.Render(title)
}

// Panel returns the frame style for a panel.
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedPanelStyle
	}
	return PanelStyle
}
