package coloring

import (
	"bytes"
	"fmt"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes any registered raster format into a pixel buffer at
// its native pixel size. Failures are reported as *DecodeError.
func DecodeImage(r io.Reader, which string) (*image.NRGBA, string, error) {
	if r == nil {
		return nil, "", &DecodeError{Which: which, Err: fmt.Errorf("nil reader")}
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &DecodeError{Which: which, Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", &DecodeError{Which: which, Err: fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())}
	}
	return ToNRGBA(img), format, nil
}

// LoadCanvasImage decodes the displayed artwork into the canvas buffer.
func LoadCanvasImage(r io.Reader) (*image.NRGBA, error) {
	buf, format, err := DecodeImage(r, "canvas")
	if err != nil {
		return nil, err
	}
	logger().WithFields(logrus.Fields{
		"format": format,
		"width":  buf.Rect.Dx(),
		"height": buf.Rect.Dy(),
	}).Debug("canvas image decoded")
	return buf, nil
}

// LoadMaskImage decodes the mask and resamples it with nearest-neighbor
// scaling to exactly targetW x targetH.
func LoadMaskImage(r io.Reader, targetW, targetH int) (*image.NRGBA, error) {
	if targetW <= 0 || targetH <= 0 {
		return nil, &DecodeError{Which: "mask", Err: fmt.Errorf("invalid target size %dx%d", targetW, targetH)}
	}
	buf, format, err := DecodeImage(r, "mask")
	if err != nil {
		return nil, err
	}
	if buf.Rect.Dx() != targetW || buf.Rect.Dy() != targetH {
		logger().WithFields(logrus.Fields{
			"format": format,
			"from":   fmt.Sprintf("%dx%d", buf.Rect.Dx(), buf.Rect.Dy()),
			"to":     fmt.Sprintf("%dx%d", targetW, targetH),
		}).Debug("resampling mask")
		buf = ScaleNearest(buf, targetW, targetH)
	}
	return buf, nil
}

// LoadBytes is a convenience for callers holding encoded image bytes: it
// decodes the canvas and a matching mask in one step.
func LoadBytes(canvasData, maskData []byte) (canvas, mask *image.NRGBA, err error) {
	canvas, err = LoadCanvasImage(bytes.NewReader(canvasData))
	if err != nil {
		return nil, nil, err
	}
	mask, err = LoadMaskImage(bytes.NewReader(maskData), canvas.Rect.Dx(), canvas.Rect.Dy())
	if err != nil {
		return nil, nil, err
	}
	return canvas, mask, nil
}
