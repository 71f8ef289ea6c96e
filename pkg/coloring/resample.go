package coloring

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ScaleNearest resamples src to exactly dstW x dstH using nearest-neighbor
// sampling. No interpolation happens, so every opaque output pixel is a
// byte-for-byte copy of some source pixel; the fill engine depends on that.
func ScaleNearest(src image.Image, dstW, dstH int) *image.NRGBA {
	if src == nil || dstW <= 0 || dstH <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max(dstW, 0), max(dstH, 0)))
	}
	b := src.Bounds()
	if b.Dx() == dstW && b.Dy() == dstH {
		return ToNRGBA(src)
	}
	// Copy into NRGBA first so sampling reads non-premultiplied values.
	n := ToNRGBA(src)
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), n, n.Bounds(), xdraw.Src, nil)
	return dst
}
