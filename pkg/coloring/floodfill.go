package coloring

import (
	"image"
	"image/color"

	"github.com/sirupsen/logrus"
)

// DefaultPixelCap bounds the number of pixels one fill may paint.
const DefaultPixelCap = 500000

// FillOptions tunes Fill. The zero value uses the defaults.
type FillOptions struct {
	// PixelCap stops traversal after this many painted pixels. <= 0 means DefaultPixelCap.
	PixelCap int
}

// FillResult describes the outcome of a fill.
type FillResult struct {
	Filled int  // pixels repainted; 0 means nothing changed
	Capped bool // traversal stopped at the pixel cap; still a success
	// Region is the mask color that keyed the fill, empty when Filled == 0.
	Region string
}

// bitset is a 1-bit-per-pixel visited set.
type bitset []byte

func newBitset(n int) bitset { return make(bitset, (n+7)/8) }

func (b bitset) get(i int) bool { return (b[i>>3]>>(uint(i)&7))&1 == 1 }

func (b bitset) set(i int) { b[i>>3] |= 1 << (uint(i) & 7) }

// Fill repaints the region containing (seedX, seedY) with fill.
//
// Region membership comes from the mask, not from the canvas: a pixel joins
// when its mask RGB equals the seed's mask RGB exactly, its mask pixel is
// opaque, and its canvas pixel is neither transparent nor boundary ink.
// Traversal is 4-connected and iterative. The mask is never modified.
func Fill(canvas, mask *image.NRGBA, seedX, seedY int, fill color.NRGBA, opts FillOptions) FillResult {
	if canvas == nil || mask == nil {
		return FillResult{}
	}
	if !sameSize(canvas, mask) {
		logger().WithFields(logrus.Fields{
			"canvas": canvas.Rect.Size().String(),
			"mask":   mask.Rect.Size().String(),
		}).Error("fill: canvas and mask dimensions differ")
		return FillResult{}
	}
	w, h := canvas.Rect.Dx(), canvas.Rect.Dy()
	if seedX < 0 || seedY < 0 || seedX >= w || seedY >= h {
		return FillResult{}
	}
	pixelCap := opts.PixelCap
	if pixelCap <= 0 {
		pixelCap = DefaultPixelCap
	}

	seed := pixelAt(canvas, seedX, seedY)
	if seed.R == fill.R && seed.G == fill.G && seed.B == fill.B {
		return FillResult{}
	}
	if IsTransparent(seed.A) || IsBoundaryPixel(seed.R, seed.G, seed.B, seed.A) {
		return FillResult{}
	}
	key := pixelAt(mask, seedX, seedY)

	eligible := func(x, y int) bool {
		ci := y*canvas.Stride + x*4
		cr, cg, cb, ca := canvas.Pix[ci], canvas.Pix[ci+1], canvas.Pix[ci+2], canvas.Pix[ci+3]
		if IsTransparent(ca) || IsBoundaryPixel(cr, cg, cb, ca) {
			return false
		}
		mi := y*mask.Stride + x*4
		if IsTransparent(mask.Pix[mi+3]) {
			return false
		}
		return mask.Pix[mi] == key.R && mask.Pix[mi+1] == key.G && mask.Pix[mi+2] == key.B
	}
	if !eligible(seedX, seedY) {
		return FillResult{}
	}

	visited := newBitset(w * h)
	type point struct{ x, y int }
	stack := make([]point, 0, 1024)
	stack = append(stack, point{seedX, seedY})
	visited.set(seedY*w + seedX)

	filled := 0
	capped := false
	for len(stack) > 0 {
		if filled >= pixelCap {
			capped = true
			break
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i := p.y*canvas.Stride + p.x*4
		canvas.Pix[i+0] = fill.R
		canvas.Pix[i+1] = fill.G
		canvas.Pix[i+2] = fill.B
		canvas.Pix[i+3] = 0xff
		filled++

		neighbors := [4]point{{p.x, p.y - 1}, {p.x, p.y + 1}, {p.x - 1, p.y}, {p.x + 1, p.y}}
		for _, n := range neighbors {
			if n.x < 0 || n.y < 0 || n.x >= w || n.y >= h {
				continue
			}
			idx := n.y*w + n.x
			if visited.get(idx) {
				continue
			}
			if !eligible(n.x, n.y) {
				continue
			}
			visited.set(idx)
			stack = append(stack, n)
		}
	}

	region := HexOf(key)
	entry := logger().WithFields(logrus.Fields{
		"seed_x": seedX,
		"seed_y": seedY,
		"region": region,
		"fill":   HexOf(fill),
		"pixels": filled,
	})
	if capped {
		entry.WithField("cap", pixelCap).Warn("fill stopped at pixel cap")
	} else {
		entry.Debug("fill complete")
	}
	return FillResult{Filled: filled, Capped: capped, Region: region}
}

// FillHex is Fill with a hex fill color and default options. It returns the
// number of pixels painted; an unparseable color paints nothing.
func FillHex(canvas, mask *image.NRGBA, seedX, seedY int, fillHex string) int {
	r, g, b, err := FromHex(fillHex)
	if err != nil {
		logger().WithError(err).Debug("fill: invalid color")
		return 0
	}
	return Fill(canvas, mask, seedX, seedY, color.NRGBA{R: r, G: g, B: b, A: 0xff}, FillOptions{}).Filled
}
