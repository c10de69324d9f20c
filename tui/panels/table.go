package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zouxin96/vibeStock/internal/widget"
	"github.com/zouxin96/vibeStock/tui/styles"
)

var (
	nextPageKey = key.NewBinding(key.WithKeys("right", "l", "pgdown"))
	prevPageKey = key.NewBinding(key.WithKeys("left", "h", "pgup"))
)

// TableConstructor builds a table panel. pageSize <= 0 disables paging.
type TableConstructor func(title string, columns []widget.Column, pageSize int) *TablePanel

// TablePanel renders records under a set of columns, optionally paged.
type TablePanel struct {
	title   string
	columns []widget.Column
	rows    []widget.Record
	loaded  bool

	paged bool
	pager widget.Pager

	footer  string
	focused bool
	width   int
	height  int
}

// NewTablePanel creates a table panel.
func NewTablePanel(title string, columns []widget.Column, pageSize int) *TablePanel {
	p := &TablePanel{title: title, columns: columns}
	if pageSize > 0 {
		p.paged = true
		p.pager = widget.NewPager(pageSize)
	}
	return p
}

// Update handles page keys while focused.
func (p *TablePanel) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused {
		return nil
	}
	switch {
	case key.Matches(keyMsg, nextPageKey):
		p.NextPage()
	case key.Matches(keyMsg, prevPageKey):
		p.PrevPage()
	}
	return nil
}

// View renders the panel.
func (p *TablePanel) View() string {
	w, h := innerSize(p.width, p.height)
	return frame(p.title, p.focused, p.width, p.height, p.body(w, h))
}

func (p *TablePanel) body(width, height int) string {
	if len(p.rows) == 0 {
		return placeholder(p.loaded)
	}

	visible := p.rows
	if p.paged {
		start, end := p.pager.Slice(len(p.rows))
		visible = p.rows[start:end]
	}

	// Header and footer take a line each
	maxRows := height - 1
	if p.paged || p.footer != "" {
		maxRows--
	}
	if maxRows > 0 && len(visible) > maxRows {
		visible = visible[:maxRows]
	}

	cells := make([][]string, len(visible))
	classes := make([][]widget.Class, len(visible))
	widths := make([]int, len(p.columns))
	for j, col := range p.columns {
		widths[j] = lipgloss.Width(col.Label)
	}
	for i, row := range visible {
		cells[i] = make([]string, len(p.columns))
		classes[i] = make([]widget.Class, len(p.columns))
		for j, col := range p.columns {
			text, class := col.Cell(row)
			cells[i][j] = text
			classes[i][j] = class
			widths[j] = max(widths[j], lipgloss.Width(text))
		}
	}

	var b strings.Builder
	header := make([]string, len(p.columns))
	for j, col := range p.columns {
		header[j] = align(col, col.Label, widths[j])
	}
	b.WriteString(styles.HeaderStyle.Render(strings.Join(header, " ")))

	for i := range visible {
		b.WriteString("\n")
		for j, col := range p.columns {
			if j > 0 {
				b.WriteString(" ")
			}
			b.WriteString(styles.ForClass(classes[i][j]).Render(align(col, cells[i][j], widths[j])))
		}
	}

	if footer := p.footerLine(); footer != "" {
		b.WriteString("\n")
		b.WriteString(styles.FooterStyle.Render(truncate(footer, width)))
	}
	return b.String()
}

func (p *TablePanel) footerLine() string {
	var parts []string
	if p.paged {
		parts = append(parts, fmt.Sprintf("Total %d  Page %d/%d", len(p.rows), p.pager.Page, p.TotalPages()))
	}
	if p.footer != "" {
		parts = append(parts, p.footer)
	}
	return strings.Join(parts, "  ")
}

// align right-aligns computed columns and left-aligns plain ones.
func align(col widget.Column, s string, w int) string {
	if col.Kind == widget.ColumnComputed {
		return padLeft(s, w)
	}
	return pad(s, w)
}

// SetRows replaces the rows. The current page falls back to the first when
// it no longer exists.
func (p *TablePanel) SetRows(rows []widget.Record) {
	p.rows = rows
	p.loaded = true
	if p.paged {
		p.pager.Reset(len(rows))
	}
}

// Rows returns the current rows.
func (p *TablePanel) Rows() []widget.Record {
	return p.rows
}

// SetFooter sets an extra status line under the rows.
func (p *TablePanel) SetFooter(s string) {
	p.footer = s
}

// Page returns the current 1-based page.
func (p *TablePanel) Page() int {
	if !p.paged {
		return 1
	}
	return p.pager.Page
}

// TotalPages returns the number of pages, at least 1.
func (p *TablePanel) TotalPages() int {
	if !p.paged {
		return 1
	}
	return p.pager.TotalPages(len(p.rows))
}

func (p *TablePanel) NextPage() {
	if p.paged {
		p.pager.Next(len(p.rows))
	}
}

func (p *TablePanel) PrevPage() {
	if p.paged {
		p.pager.Prev()
	}
}

// SetFocus sets the focus state of the panel.
func (p *TablePanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *TablePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}
