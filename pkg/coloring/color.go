package coloring

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// White is the implicit "no fill required" color.
const White = "#ffffff"

// ToHex formats channels as canonical lowercase #rrggbb.
func ToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// HexOf formats the RGB part of c; alpha is ignored.
func HexOf(c color.NRGBA) string {
	return ToHex(c.R, c.G, c.B)
}

// FromHex parses #rrggbb or #rgb (the leading '#' is optional, case is ignored).
func FromHex(s string) (r, g, b uint8, err error) {
	s = strings.TrimSpace(s)
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3: // #rgb
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6: // #rrggbb
	default:
		return 0, 0, 0, fmt.Errorf("unsupported hex color %q", s)
	}
	v, perr := strconv.ParseUint(hex, 16, 32)
	if perr != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q: %w", s, perr)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// NormalizeHex canonicalizes a hex color to lowercase #rrggbb.
func NormalizeHex(s string) (string, error) {
	r, g, b, err := FromHex(s)
	if err != nil {
		return "", err
	}
	return ToHex(r, g, b), nil
}

// colorNames is the subset of CSS names accepted by ParseColor.
var colorNames = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"lime":    "#00ff00",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"pink":    "#ffc0cb",
	"brown":   "#a52a2a",
	"gray":    "#808080",
	"grey":    "#808080",
	"navy":    "#000080",
	"teal":    "#008080",
	"olive":   "#808000",
	"maroon":  "#800000",
	"silver":  "#c0c0c0",
	"gold":    "#ffd700",
	"skyblue": "#87ceeb",
	"violet":  "#ee82ee",
}

// ParseColor accepts a CSS color name or a hex form understood by FromHex
// and returns an opaque color.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color")
	}
	if hex, ok := colorNames[strings.ToLower(s)]; ok {
		s = hex
	}
	r, g, b, err := FromHex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
