package coloring

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Annotate returns a copy of src with text drawn at baseline (x, y).
// fontPath may be empty to use the built-in 7x13 face; size is in points
// and only applies to TrueType/OpenType fonts. An unreadable font falls
// back to the built-in face.
func Annotate(src *image.NRGBA, text string, fontPath string, size float64, x, y int, col color.Color) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("source image is nil")
	}
	out := CloneNRGBA(src)
	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(col),
		Face: loadFace(fontPath, size),
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
	return out, nil
}

func loadFace(fontPath string, size float64) font.Face {
	if fontPath == "" {
		return basicfont.Face7x13
	}
	log := logger().WithField("font", fontPath)
	data, err := os.ReadFile(fontPath)
	if err != nil {
		log.WithError(err).Warn("failed to read font, using basic face")
		return basicfont.Face7x13
	}
	tt, err := opentype.Parse(data)
	if err != nil {
		log.WithError(err).Warn("failed to parse font, using basic face")
		return basicfont.Face7x13
	}
	if size <= 0 {
		size = 12
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.WithError(err).Warn("failed to create font face, using basic face")
		return basicfont.Face7x13
	}
	return face
}

// ExportPNG encodes the canvas as PNG.
func ExportPNG(w io.Writer, canvas *image.NRGBA) error {
	if canvas == nil {
		return ErrNotLoaded
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, canvas); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
