package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zouxin96/vibeStock/tui/styles"
)

const (
	// Border plus horizontal padding.
	frameWidth = 4
	// Border plus title row.
	frameHeight = 3

	waitingText = "Waiting for data..."
	noDataText  = "No Data Available"
)

// innerSize is the drawable area inside a panel of the given outer size.
func innerSize(width, height int) (int, int) {
	return max(width-frameWidth, 1), max(height-frameHeight, 1)
}

// frame draws body inside the panel border under its title.
func frame(title string, focused bool, width, height int, body string) string {
	clip := lipgloss.NewStyle()
	if width > 0 {
		clip = clip.MaxWidth(max(width-frameWidth, 1))
	}
	if height > 0 {
		clip = clip.MaxHeight(max(height-frameHeight, 1))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, styles.RenderTitle(title, focused), clip.Render(body))

	style := styles.Panel(focused)
	if width > 2 {
		style = style.Width(width - 2)
	}
	if height > 2 {
		style = style.Height(height - 2)
	}
	return style.Render(content)
}

// placeholder is shown by empty panels. loaded tells "nothing yet" from
// "the feed sent an empty set".
func placeholder(loaded bool) string {
	if loaded {
		return styles.PlaceholderStyle.Render(noDataText)
	}
	return styles.PlaceholderStyle.Render(waitingText)
}

// pad left-aligns s in a cell of w terminal columns.
func pad(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// padLeft right-aligns s in a cell of w terminal columns.
func padLeft(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

// truncate cuts s to at most w terminal columns.
func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if used+rw > w {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String()
}
