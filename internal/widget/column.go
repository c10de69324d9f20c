package widget

import (
	"github.com/zouxin96/vibeStock/internal/format"
)

// Record is one decoded row of a table payload.
type Record map[string]any

// ColumnKind tells plain columns from computed ones.
type ColumnKind int

const (
	ColumnPlain ColumnKind = iota
	ColumnComputed
)

// FormatFunc renders a cell value. row is the whole record.
type FormatFunc func(v any, row Record) string

// ClassifyFunc picks the color class of a cell.
type ClassifyFunc func(v any, row Record) Class

// Column describes one table column.
type Column struct {
	Kind     ColumnKind
	Key      string
	Label    string
	Class    Class
	Format   FormatFunc
	Classify ClassifyFunc
}

// Plain shows the field as text.
func Plain(key, label string) Column {
	return Column{Kind: ColumnPlain, Key: key, Label: label}
}

// Computed derives text and class from the field. Either func may be nil.
func Computed(key, label string, render FormatFunc, classify ClassifyFunc) Column {
	return Column{Kind: ColumnComputed, Key: key, Label: label, Format: render, Classify: classify}
}

// WithClass sets a static class used when no classifier applies.
func (c Column) WithClass(cl Class) Column {
	c.Class = cl
	return c
}

// Cell renders the column for row.
func (c Column) Cell(row Record) (string, Class) {
	v := row[c.Key]
	if c.Kind == ColumnPlain {
		return format.Text(v), c.Class
	}

	text := format.Text(v)
	if c.Format != nil {
		text = c.Format(v, row)
	}
	class := c.Class
	if c.Classify != nil {
		class = c.Classify(v, row)
	}
	return text, class
}

// Fixed is a FormatFunc with a fixed number of decimals.
func Fixed(places int32) FormatFunc {
	return func(v any, _ Record) string { return format.Fixed(v, places) }
}

// Percent is a FormatFunc rendering v as a percentage.
func Percent(places int32) FormatFunc {
	return func(v any, _ Record) string { return format.Percent(v, places) }
}

// SignedPercent is Percent with a + on positive values.
func SignedPercent(places int32) FormatFunc {
	return func(v any, _ Record) string { return format.SignedPercent(v, places) }
}

// Wan renders v in units of ten thousand.
func Wan(v any, _ Record) string { return format.Wan(v) }

// ByChange is a ClassifyFunc coloring by the sign of v.
func ByChange(v any, _ Record) Class { return ChangeClass(v) }
