package widget

import "github.com/zouxin96/vibeStock/internal/format"

// Class is the semantic color of a rendered value. Panels map it to a style.
type Class int

const (
	ClassNone Class = iota
	ClassUp
	ClassDown
	ClassFlat
	ClassPrice
	ClassAccent
	ClassInfo
	ClassMuted
	ClassCode
)

func (c Class) String() string {
	switch c {
	case ClassUp:
		return "up"
	case ClassDown:
		return "down"
	case ClassFlat:
		return "flat"
	case ClassPrice:
		return "price"
	case ClassAccent:
		return "accent"
	case ClassInfo:
		return "info"
	case ClassMuted:
		return "muted"
	case ClassCode:
		return "code"
	default:
		return "none"
	}
}

// ChangeClass colors a change value: positive is up, negative is down.
// Missing values are flat.
func ChangeClass(v any) Class {
	d, ok := format.Number(v)
	if !ok {
		return ClassFlat
	}
	switch d.Sign() {
	case 1:
		return ClassUp
	case -1:
		return ClassDown
	default:
		return ClassFlat
	}
}
