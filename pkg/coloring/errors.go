package coloring

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is matched by every *DecodeError via errors.Is.
	ErrDecode = errors.New("coloring: image decode failed")
	// ErrDimensionMismatch reports canvas and mask buffers of different sizes.
	ErrDimensionMismatch = errors.New("coloring: canvas and mask dimensions differ")
	// ErrCorruptSnapshot reports a serialized canvas that cannot be restored.
	ErrCorruptSnapshot = errors.New("coloring: corrupt snapshot")
	// ErrNotLoaded is returned by Session calls that need loaded buffers.
	ErrNotLoaded = errors.New("coloring: no image loaded")
	// ErrColorNotAllowed is returned when selecting a color outside the palette.
	ErrColorNotAllowed = errors.New("coloring: color not in palette")
)

// DecodeError wraps a failure to decode the source or the mask image.
type DecodeError struct {
	Which string // "canvas" or "mask"
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s image: %v", e.Which, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDecode) true for any DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
