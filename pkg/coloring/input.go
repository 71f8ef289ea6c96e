package coloring

import (
	"image"
	"math"
	"time"
)

// ElementRect is the on-screen rectangle a canvas is rendered into, in the
// same client (CSS pixel) units as pointer events.
type ElementRect struct {
	Left, Top     float64
	Width, Height float64
}

// ToCanvasCoords maps client coordinates to buffer pixel coordinates using
// the ratio of buffer size to rendered size. ok is false outside the buffer.
func ToCanvasCoords(clientX, clientY float64, rect ElementRect, bufW, bufH int) (p image.Point, ok bool) {
	if rect.Width <= 0 || rect.Height <= 0 || bufW <= 0 || bufH <= 0 {
		return image.Point{}, false
	}
	fx := (clientX - rect.Left) * float64(bufW) / rect.Width
	fy := (clientY - rect.Top) * float64(bufH) / rect.Height
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return image.Point{}, false
	}
	x := int(math.Floor(fx))
	y := int(math.Floor(fy))
	if x < 0 || y < 0 || x >= bufW || y >= bufH {
		return image.Point{}, false
	}
	return image.Point{X: x, Y: y}, true
}

// Tap thresholds used by NewTapDetector.
const (
	DefaultTapMaxMove     = 10.0
	DefaultTapMaxDuration = 300 * time.Millisecond
)

// TouchGesture is the state recorded on touch-start.
type TouchGesture struct {
	X, Y float64
	At   time.Time
}

// TapDetector tells intentional taps from drags and scrolls. A touch
// sequence is a tap when it moved less than MaxMove on both axes and
// lasted less than MaxDuration.
type TapDetector struct {
	MaxMove     float64
	MaxDuration time.Duration

	start *TouchGesture
}

// NewTapDetector returns a detector with the default thresholds.
func NewTapDetector() *TapDetector {
	return &TapDetector{MaxMove: DefaultTapMaxMove, MaxDuration: DefaultTapMaxDuration}
}

// TouchStart records the start of a gesture, replacing any pending one.
func (d *TapDetector) TouchStart(x, y float64, at time.Time) {
	d.start = &TouchGesture{X: x, Y: y, At: at}
}

// Pending reports whether a touch-start is waiting for its end.
func (d *TapDetector) Pending() bool { return d.start != nil }

// TouchEnd classifies the gesture and always clears the recorded start.
// An end without a start is never a tap.
func (d *TapDetector) TouchEnd(x, y float64, at time.Time) bool {
	start := d.start
	d.start = nil
	if start == nil {
		return false
	}
	return IsTap(x-start.X, y-start.Y, at.Sub(start.At), d.MaxMove, d.MaxDuration)
}

// IsTap applies the tap thresholds to a gesture's deltas.
func IsTap(dx, dy float64, dt time.Duration, maxMove float64, maxDuration time.Duration) bool {
	if maxMove <= 0 {
		maxMove = DefaultTapMaxMove
	}
	if maxDuration <= 0 {
		maxDuration = DefaultTapMaxDuration
	}
	return math.Abs(dx) < maxMove && math.Abs(dy) < maxMove && dt < maxDuration && dt >= 0
}
