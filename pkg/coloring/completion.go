package coloring

import (
	"image"

	"github.com/sirupsen/logrus"
)

// DefaultFillThreshold is the fraction of a region that must match for the
// region to count as done. It leaves room for an unfilled anti-aliased rim.
const DefaultFillThreshold = 0.8

// CheckOptions tunes Check. Zero fields use the defaults.
type CheckOptions struct {
	FillThreshold float64 // (0,1]; <= 0 means DefaultFillThreshold
	Tolerance     int     // per-channel; <= 0 means DefaultTolerance
}

// DefaultCheckOptions returns the default verification policy.
func DefaultCheckOptions() CheckOptions {
	return CheckOptions{FillThreshold: DefaultFillThreshold, Tolerance: DefaultTolerance}
}

func (o CheckOptions) normalized() CheckOptions {
	if o.FillThreshold <= 0 {
		o.FillThreshold = DefaultFillThreshold
	}
	if o.FillThreshold > 1 {
		o.FillThreshold = 1
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}

// CompletionResult is the outcome of a completion check.
type CompletionResult struct {
	IsComplete    bool
	MissingColors []string // unsatisfied regions in discovery order; never nil
}

// RegionStatus reports verification counts for one mask color.
type RegionStatus struct {
	Color     string
	Total     int
	Satisfied int
}

// Ratio is the satisfied fraction of the region.
func (r RegionStatus) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Satisfied) / float64(r.Total)
}

// CheckRegions verifies every required region and returns per-region counts
// in discovery (row-major) order. A region is the set of opaque mask pixels
// sharing one palette color other than white; a canvas pixel satisfies it
// when every channel is within the tolerance of the mask color.
func CheckRegions(canvas, mask *image.NRGBA, palette Palette, opts CheckOptions) []RegionStatus {
	if canvas == nil || mask == nil {
		return nil
	}
	if !sameSize(canvas, mask) {
		logger().WithFields(logrus.Fields{
			"canvas": canvas.Rect.Size().String(),
			"mask":   mask.Rect.Size().String(),
		}).Error("check: canvas and mask dimensions differ")
		return nil
	}
	opts = opts.normalized()
	allowed := AllowedColorSet(palette)

	// Key by packed RGB so the scan avoids formatting a string per pixel.
	index := make(map[uint32]int)
	hexCache := make(map[uint32]string)
	var regions []RegionStatus
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mi := y*mask.Stride + x*4
			mr, mg, mb, ma := mask.Pix[mi], mask.Pix[mi+1], mask.Pix[mi+2], mask.Pix[mi+3]
			if IsTransparent(ma) {
				continue
			}
			packed := uint32(mr)<<16 | uint32(mg)<<8 | uint32(mb)
			ri, known := index[packed]
			if !known {
				hex, cached := hexCache[packed]
				if !cached {
					hex = ToHex(mr, mg, mb)
					hexCache[packed] = hex
				}
				if hex == White {
					continue
				}
				if _, ok := allowed[hex]; !ok {
					continue
				}
				ri = len(regions)
				index[packed] = ri
				regions = append(regions, RegionStatus{Color: hex})
			}
			regions[ri].Total++
			ci := y*canvas.Stride + x*4
			if ColorsEqual(canvas.Pix[ci], canvas.Pix[ci+1], canvas.Pix[ci+2], mr, mg, mb, opts.Tolerance) {
				regions[ri].Satisfied++
			}
		}
	}
	return regions
}

// Check compares the canvas against the mask. It has no side effects and
// returns the same result for unchanged buffers.
func Check(canvas, mask *image.NRGBA, palette Palette, opts CheckOptions) CompletionResult {
	opts = opts.normalized()
	res := CompletionResult{IsComplete: true, MissingColors: []string{}}
	for _, r := range CheckRegions(canvas, mask, palette, opts) {
		if r.Ratio() < opts.FillThreshold {
			res.IsComplete = false
			res.MissingColors = append(res.MissingColors, r.Color)
		}
	}
	if canvas == nil || mask == nil || !sameSize(canvas, mask) {
		res.IsComplete = false
	}
	return res
}
