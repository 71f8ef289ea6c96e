package coloring

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Mode selects how the palette is presented to the user. The engine
// behaves identically in both modes.
type Mode int

const (
	// ModeSingleSelect shows plain swatches.
	ModeSingleSelect Mode = iota
	// ModeLabeled numbers each swatch (paint-by-number).
	ModeLabeled
)

func (m Mode) String() string {
	switch m {
	case ModeLabeled:
		return "labeled"
	default:
		return "single"
	}
}

// ParseMode accepts "single" or "labeled".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "single-select":
		return ModeSingleSelect, nil
	case "labeled", "labelled", "numbered":
		return ModeLabeled, nil
	}
	return ModeSingleSelect, fmt.Errorf("unknown palette mode %q", s)
}

// SessionOptions configures a Session. The zero value is usable.
type SessionOptions struct {
	HistoryCapacity int
	Fill            FillOptions
	Check           CheckOptions
	Mode            Mode
	// AutoCheck runs a completion check after every fill and fires
	// OnComplete on the transition to complete.
	AutoCheck bool
	// Persist receives the encoded canvas after every history change.
	Persist PersistFunc

	OnComplete func(CompletionResult)
	// OnMistake fires when a fill paints a palette region with a color
	// other than the region's own.
	OnMistake func(regionColor, fillColor string)
}

// Session is one local editing session: a canvas, its mask, the palette,
// the selected color and the undo history. It is not safe for concurrent
// use; every call runs to completion synchronously.
type Session struct {
	opts SessionOptions

	canvas   *image.NRGBA
	mask     *image.NRGBA
	original *image.NRGBA
	palette  Palette
	selected string
	history  *History
	taps     *TapDetector
	complete bool
	resumed  bool
}

// NewSession returns an empty session; call Load before editing.
func NewSession(opts SessionOptions) *Session {
	return &Session{opts: opts, taps: NewTapDetector()}
}

// Load installs a new canvas and mask, replacing all previous state.
// The mask is resampled to the canvas size if needed. An empty palette is
// discovered from the mask. saved, when non-empty, is a snapshot that
// replaces the canvas contents; a corrupt or mismatched snapshot is logged
// and ignored. Nothing changes if Load returns an error.
func (s *Session) Load(canvas, mask image.Image, palette Palette, saved []byte) error {
	if canvas == nil {
		return &DecodeError{Which: "canvas", Err: fmt.Errorf("nil image")}
	}
	if mask == nil {
		return &DecodeError{Which: "mask", Err: fmt.Errorf("nil image")}
	}
	original := ToNRGBA(canvas)
	w, h := original.Rect.Dx(), original.Rect.Dy()
	if w == 0 || h == 0 {
		return &DecodeError{Which: "canvas", Err: fmt.Errorf("empty image")}
	}
	m := ScaleNearest(mask, w, h)

	if len(palette) == 0 {
		palette = DiscoverPalette(m)
	} else {
		p, err := NewPalette(palette...)
		if err != nil {
			return err
		}
		palette = p
	}

	live := CloneNRGBA(original)
	resumed := false
	restored, err := RestoreSnapshot(saved)
	switch {
	case err != nil:
		logger().WithError(err).Warn("ignoring saved progress")
	case restored != nil && !sameSize(restored, original):
		logger().WithError(ErrDimensionMismatch).WithFields(logrus.Fields{
			"saved": restored.Rect.Size().String(),
			"image": original.Rect.Size().String(),
		}).Warn("ignoring saved progress")
	case restored != nil:
		live = restored
		resumed = true
	}

	hist := NewHistory(s.opts.HistoryCapacity)
	hist.Reset(live)
	hist.SetPersistFunc(s.opts.Persist)

	selected := ""
	if len(palette) > 0 {
		selected = palette[0]
	}

	s.canvas = live
	s.mask = m
	s.original = original
	s.palette = palette
	s.selected = selected
	s.history = hist
	s.taps = NewTapDetector()
	s.complete = Check(live, m, palette, s.opts.Check).IsComplete
	s.resumed = resumed

	logger().WithFields(logrus.Fields{
		"width":   w,
		"height":  h,
		"palette": len(palette),
		"resumed": resumed,
	}).Info("session loaded")
	return nil
}

// LoadReaders decodes the canvas and mask images then calls Load.
func (s *Session) LoadReaders(src, mask io.Reader, palette Palette, saved []byte) error {
	canvas, err := LoadCanvasImage(src)
	if err != nil {
		return err
	}
	m, err := LoadMaskImage(mask, canvas.Rect.Dx(), canvas.Rect.Dy())
	if err != nil {
		return err
	}
	return s.Load(canvas, m, palette, saved)
}

// Restore replaces the canvas with a saved snapshot and makes it the only
// history entry. The canvas is unchanged on error.
func (s *Session) Restore(saved []byte) error {
	if !s.Loaded() {
		return ErrNotLoaded
	}
	img, err := RestoreSnapshot(saved)
	if err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("%w: empty snapshot", ErrCorruptSnapshot)
	}
	if !sameSize(img, s.canvas) {
		return fmt.Errorf("%w: snapshot %v, canvas %v", ErrDimensionMismatch, img.Rect.Size(), s.canvas.Rect.Size())
	}
	copy(s.canvas.Pix, img.Pix)
	s.history.Reset(s.canvas)
	s.refreshComplete()
	s.resumed = true
	return nil
}

// Resumed reports whether the canvas came from saved progress rather than
// the decoded image.
func (s *Session) Resumed() bool { return s.resumed }

// Unload discards the buffers and history.
func (s *Session) Unload() {
	*s = Session{opts: s.opts, taps: NewTapDetector()}
}

// Loaded reports whether buffers are installed.
func (s *Session) Loaded() bool { return s.canvas != nil && s.mask != nil }

// Canvas returns the live canvas buffer. Callers may encode it but must not
// resize it.
func (s *Session) Canvas() *image.NRGBA { return s.canvas }

// Mask returns the mask buffer.
func (s *Session) Mask() *image.NRGBA { return s.mask }

// Palette returns the session palette.
func (s *Session) Palette() Palette { return s.palette }

// Mode returns the palette presentation mode.
func (s *Session) Mode() Mode { return s.opts.Mode }

// Labels maps palette colors to 1-based swatch numbers in labeled mode and
// returns nil otherwise.
func (s *Session) Labels() map[string]int {
	if s.opts.Mode != ModeLabeled {
		return nil
	}
	labels := make(map[string]int, len(s.palette))
	for i, c := range s.palette {
		labels[c] = i + 1
	}
	return labels
}

// Selected returns the current fill color.
func (s *Session) Selected() string { return s.selected }

// SelectColor changes the fill color. Palette colors and white (the
// eraser) are accepted.
func (s *Session) SelectColor(hex string) error {
	c, err := ParseColor(hex)
	if err != nil {
		return err
	}
	n := HexOf(c)
	if _, ok := AllowedColorSet(s.palette)[n]; !ok {
		return fmt.Errorf("%w: %s", ErrColorNotAllowed, n)
	}
	s.selected = n
	return nil
}

// FillAt fills the region under buffer coordinates (x, y) with the selected
// color and records a history entry when anything changed.
func (s *Session) FillAt(x, y int) int {
	if !s.Loaded() || s.selected == "" {
		return 0
	}
	r, g, b, err := FromHex(s.selected)
	if err != nil {
		return 0
	}
	res := Fill(s.canvas, s.mask, x, y, color.NRGBA{R: r, G: g, B: b, A: 0xff}, s.opts.Fill)
	if res.Filled == 0 {
		return 0
	}
	s.history.Push(s.canvas)

	if res.Region != s.selected && s.palette.Contains(res.Region) && s.opts.OnMistake != nil {
		s.opts.OnMistake(res.Region, s.selected)
	}
	if s.opts.AutoCheck {
		result := s.Check()
		if result.IsComplete && !s.complete && s.opts.OnComplete != nil {
			s.opts.OnComplete(result)
		}
		s.complete = result.IsComplete
	}
	return res.Filled
}

// PointerTap resolves a click/tap in client coordinates and fills there.
// Taps outside the drawable area do nothing.
func (s *Session) PointerTap(clientX, clientY float64, rect ElementRect) int {
	if !s.Loaded() {
		return 0
	}
	p, ok := ToCanvasCoords(clientX, clientY, rect, s.canvas.Rect.Dx(), s.canvas.Rect.Dy())
	if !ok {
		return 0
	}
	return s.FillAt(p.X, p.Y)
}

// TouchStart records the start of a touch sequence.
func (s *Session) TouchStart(clientX, clientY float64, at time.Time) {
	s.taps.TouchStart(clientX, clientY, at)
}

// TouchEnd ends a touch sequence; a tap fills at the end coordinates,
// a drag or scroll does nothing.
func (s *Session) TouchEnd(clientX, clientY float64, at time.Time, rect ElementRect) int {
	if !s.taps.TouchEnd(clientX, clientY, at) {
		return 0
	}
	return s.PointerTap(clientX, clientY, rect)
}

// Undo restores the previous snapshot.
func (s *Session) Undo() bool {
	if !s.Loaded() || !s.history.Undo(s.canvas) {
		return false
	}
	s.refreshComplete()
	return true
}

// Redo re-applies the next snapshot.
func (s *Session) Redo() bool {
	if !s.Loaded() || !s.history.Redo(s.canvas) {
		return false
	}
	s.refreshComplete()
	return true
}

// CanUndo reports whether Undo would change the canvas.
func (s *Session) CanUndo() bool { return s.Loaded() && s.history.CanUndo() }

// CanRedo reports whether Redo would change the canvas.
func (s *Session) CanRedo() bool { return s.Loaded() && s.history.CanRedo() }

// History exposes the undo stack for inspection.
func (s *Session) History() *History { return s.history }

// Reset discards all progress: the canvas returns to the decoded image and
// the history holds that single state.
func (s *Session) Reset() {
	if !s.Loaded() {
		return
	}
	copy(s.canvas.Pix, s.original.Pix)
	s.history.Reset(s.canvas)
	s.refreshComplete()
	logger().Info("session reset")
}

// Check verifies the canvas against the mask with the session policy.
func (s *Session) Check() CompletionResult {
	if !s.Loaded() {
		return CompletionResult{MissingColors: []string{}}
	}
	return Check(s.canvas, s.mask, s.palette, s.opts.Check)
}

// Regions returns per-region verification counts.
func (s *Session) Regions() []RegionStatus {
	if !s.Loaded() {
		return nil
	}
	return CheckRegions(s.canvas, s.mask, s.palette, s.opts.Check)
}

// Snapshot serializes the live canvas for a save point.
func (s *Session) Snapshot() ([]byte, error) {
	if !s.Loaded() {
		return nil, ErrNotLoaded
	}
	return EncodeSnapshot(s.canvas)
}

// ExportPNG writes the live canvas as PNG.
func (s *Session) ExportPNG(w io.Writer) error {
	if !s.Loaded() {
		return ErrNotLoaded
	}
	return ExportPNG(w, s.canvas)
}

func (s *Session) refreshComplete() {
	if s.opts.AutoCheck {
		s.complete = s.Check().IsComplete
	}
}
