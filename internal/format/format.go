// Package format renders feed values for display. Every function accepts
// loosely typed JSON values and falls back to Placeholder instead of failing.
package format

import (
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Placeholder is shown wherever a value is missing or not numeric.
const Placeholder = "-"

var tenThousand = decimal.NewFromInt(10000)

// Number converts v into a decimal. The bool is false when v is missing or not numeric.
func Number(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		return Number(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	case json.Number:
		return parse(string(n))
	case string:
		return parse(n)
	default:
		return decimal.Zero, false
	}
}

func parse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Fixed formats v with exactly places decimals.
func Fixed(v any, places int32) string {
	d, ok := Number(v)
	if !ok {
		return Placeholder
	}
	return d.StringFixed(places)
}

// Percent formats v as a percentage, e.g. 1.23%.
func Percent(v any, places int32) string {
	d, ok := Number(v)
	if !ok {
		return Placeholder
	}
	return d.StringFixed(places) + "%"
}

// SignedPercent is Percent with a leading + on positive values.
func SignedPercent(v any, places int32) string {
	d, ok := Number(v)
	if !ok {
		return Placeholder
	}
	s := d.StringFixed(places) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// Wan expresses v in units of ten thousand, rounded to an integer.
func Wan(v any) string {
	d, ok := Number(v)
	if !ok {
		return Placeholder
	}
	return d.Div(tenThousand).StringFixed(0)
}

// Float returns v as a float64, or 0 when it is not numeric.
func Float(v any) float64 {
	d, ok := Number(v)
	if !ok {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// Text renders v as display text, using Placeholder for missing values.
func Text(v any) string {
	switch s := v.(type) {
	case nil:
		return Placeholder
	case string:
		if s == "" {
			return Placeholder
		}
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	}
	if d, ok := Number(v); ok {
		return d.String()
	}
	return Placeholder
}
