package coloring

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

func setPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	i := img.PixOffset(x, y)
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}

// ringFixture builds the 20x20 scene used across tests: a white canvas with
// a black outline on rows/columns 4 and 15, and a mask that is red inside
// the outline (5..14), black on it and white outside.
func ringFixture() (canvas, mask *image.NRGBA) {
	canvas = NewSolid(20, 20, white)
	mask = NewSolid(20, 20, white)
	for y := 4; y <= 15; y++ {
		for x := 4; x <= 15; x++ {
			if x == 4 || x == 15 || y == 4 || y == 15 {
				setPixel(canvas, x, y, black)
				setPixel(mask, x, y, black)
			} else {
				setPixel(mask, x, y, red)
			}
		}
	}
	return canvas, mask
}

// splitMask is a w x h mask whose left half is left and right half is right.
func splitMask(w, h int, left, right color.NRGBA) *image.NRGBA {
	m := NewSolid(w, h, right)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			setPixel(m, x, y, left)
		}
	}
	return m
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func countColor(img *image.NRGBA, c color.NRGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == c.R && img.Pix[i+1] == c.G && img.Pix[i+2] == c.B && img.Pix[i+3] == c.A {
			n++
		}
	}
	return n
}

// saveTestOutput writes img next to the test when COLORFILL_SAVE_TEST_OUTPUT=1.
func saveTestOutput(t *testing.T, name string, img image.Image) {
	t.Helper()
	if os.Getenv("COLORFILL_SAVE_TEST_OUTPUT") != "1" {
		return
	}
	f, err := os.Create(filepath.Join(".", name))
	if err != nil {
		t.Logf("save test output: %v", err)
		return
	}
	defer f.Close()
	png.Encode(f, img)
}
