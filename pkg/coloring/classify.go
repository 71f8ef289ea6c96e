package coloring

import (
	"fmt"
	"image"
)

const (
	// DefaultTolerance is the per-channel deviation accepted by verification.
	DefaultTolerance = 30

	// transparentAlpha: pixels with alpha below this are gaps, never filled.
	transparentAlpha = 128
	// darkBrightness and grayChroma define "dark near-gray" outline ink.
	darkBrightness = 70
	grayChroma     = 30
)

// IsTransparent reports whether alpha marks a deliberate gap.
func IsTransparent(a uint8) bool {
	return a < transparentAlpha
}

// IsBoundaryPixel reports whether a pixel is outline: either transparent or
// dark and nearly gray. Boundary pixels are never filled and stop propagation.
func IsBoundaryPixel(r, g, b, a uint8) bool {
	if IsTransparent(a) {
		return true
	}
	ri, gi, bi := int(r), int(g), int(b)
	brightness := (ri + gi + bi) / 3
	if brightness >= darkBrightness {
		return false
	}
	spread := max(absInt(ri-gi), absInt(gi-bi), absInt(ri-bi))
	return spread < grayChroma
}

// ColorsEqual compares two RGB triples within a per-channel tolerance.
// It is used for verification only; fill boundaries use exact mask equality.
func ColorsEqual(r1, g1, b1, r2, g2, b2 uint8, tolerance int) bool {
	return absInt(int(r1)-int(r2)) <= tolerance &&
		absInt(int(g1)-int(g2)) <= tolerance &&
		absInt(int(b1)-int(b2)) <= tolerance
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Palette is an ordered list of distinct lowercase #rrggbb colors.
type Palette []string

// NewPalette normalizes and de-duplicates colors, keeping first occurrence
// order. Names accepted by ParseColor are allowed.
func NewPalette(colors ...string) (Palette, error) {
	seen := make(map[string]struct{}, len(colors))
	out := make(Palette, 0, len(colors))
	for _, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("palette entry %q: %w", s, err)
		}
		hex := HexOf(c)
		if _, dup := seen[hex]; dup {
			continue
		}
		seen[hex] = struct{}{}
		out = append(out, hex)
	}
	return out, nil
}

// Contains reports whether hex (any accepted form) is a palette color.
func (p Palette) Contains(hex string) bool {
	n, err := NormalizeHex(hex)
	if err != nil {
		return false
	}
	for _, c := range p {
		if c == n {
			return true
		}
	}
	return false
}

// Index returns the position of hex in the palette or -1.
func (p Palette) Index(hex string) int {
	n, err := NormalizeHex(hex)
	if err != nil {
		return -1
	}
	for i, c := range p {
		if c == n {
			return i
		}
	}
	return -1
}

// AllowedColorSet returns the palette colors plus white for O(1) membership
// tests. Entries that do not parse are skipped.
func AllowedColorSet(palette Palette) map[string]struct{} {
	set := make(map[string]struct{}, len(palette)+1)
	for _, c := range palette {
		if n, err := NormalizeHex(c); err == nil {
			set[n] = struct{}{}
		}
	}
	set[White] = struct{}{}
	return set
}

// DiscoverPalette lists the distinct mask colors that define fillable
// regions: opaque, not white, not boundary. Order is row-major discovery.
func DiscoverPalette(mask *image.NRGBA) Palette {
	if mask == nil {
		return nil
	}
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	seen := make(map[[3]uint8]struct{})
	var out Palette
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			r, g, b, a := row[i], row[i+1], row[i+2], row[i+3]
			if IsBoundaryPixel(r, g, b, a) || (r == 0xff && g == 0xff && b == 0xff) {
				continue
			}
			key := [3]uint8{r, g, b}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, ToHex(r, g, b))
		}
	}
	return out
}
