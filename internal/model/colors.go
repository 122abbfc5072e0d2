package model

import "strings"

// Color is one of the five Magic colors
type Color string

const (
	ColorWhite Color = "W"
	ColorBlue  Color = "U"
	ColorBlack Color = "B"
	ColorRed   Color = "R"
	ColorGreen Color = "G"
)

// colorOrder is canonical WUBRG ordering for stable serialization
var colorOrder = []Color{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen}

// ColorIdentity is a set of colors, serialized in WUBRG order (e.g. "WUG")
type ColorIdentity []Color

// ParseColorIdentity parses a color identity string like "wug" or "WUBRG".
// Unknown symbols make the identity invalid.
func ParseColorIdentity(s string) (ColorIdentity, bool) {
	seen := make(map[Color]bool, 5)
	for _, r := range strings.ToUpper(s) {
		c := Color(r)
		switch c {
		case ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen:
			seen[c] = true
		default:
			return nil, false
		}
	}
	var ci ColorIdentity
	for _, c := range colorOrder {
		if seen[c] {
			ci = append(ci, c)
		}
	}
	return ci, true
}

// String renders the identity in canonical WUBRG order
func (ci ColorIdentity) String() string {
	var b strings.Builder
	for _, c := range ci {
		b.WriteString(string(c))
	}
	return b.String()
}

// Contains reports whether the identity includes the given color
func (ci ColorIdentity) Contains(c Color) bool {
	for _, x := range ci {
		if x == c {
			return true
		}
	}
	return false
}
