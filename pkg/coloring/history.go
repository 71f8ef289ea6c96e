package coloring

import (
	"image"

	"github.com/sirupsen/logrus"
)

// DefaultHistoryCapacity is the number of snapshots kept for undo/redo.
const DefaultHistoryCapacity = 50

// PersistFunc receives the encoded live canvas after every history change.
type PersistFunc func(snapshot []byte) error

// History is a bounded undo/redo stack of full canvas snapshots.
// Entries are private copies; the live canvas is never aliased.
type History struct {
	entries  [][]byte
	cursor   int
	capacity int
	persist  PersistFunc
}

// NewHistory returns an empty stack. capacity <= 0 means DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// SetPersistFunc installs the persistence hook; nil disables it.
func (h *History) SetPersistFunc(fn PersistFunc) { h.persist = fn }

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the index of the current snapshot.
func (h *History) Cursor() int { return h.cursor }

// Capacity returns the maximum number of retained snapshots.
func (h *History) Capacity() int { return h.capacity }

// CanUndo reports whether Undo would move.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Push records a copy of buf. A redo branch beyond the cursor is discarded
// first; when the stack overflows the oldest entry is evicted and the
// cursor keeps pointing at the same logical entry.
func (h *History) Push(buf *image.NRGBA) {
	if buf == nil {
		return
	}
	if len(h.entries) > 0 && h.cursor < len(h.entries)-1 {
		for i := h.cursor + 1; i < len(h.entries); i++ {
			h.entries[i] = nil
		}
		h.entries = h.entries[:h.cursor+1]
	}
	snap := make([]byte, len(buf.Pix))
	copy(snap, buf.Pix)
	h.entries = append(h.entries, snap)
	h.cursor = len(h.entries) - 1
	if len(h.entries) > h.capacity {
		h.entries[0] = nil
		h.entries = h.entries[1:]
		h.cursor--
	}
	logger().WithFields(logrus.Fields{"len": len(h.entries), "cursor": h.cursor}).Debug("history push")
	h.notify(buf)
}

// Undo steps back one entry and copies it into live. It returns false and
// leaves live untouched when there is nothing to undo.
func (h *History) Undo(live *image.NRGBA) bool {
	if !h.CanUndo() || !h.restore(live, h.cursor-1) {
		return false
	}
	h.cursor--
	h.notify(live)
	return true
}

// Redo steps forward one entry and copies it into live.
func (h *History) Redo(live *image.NRGBA) bool {
	if !h.CanRedo() || !h.restore(live, h.cursor+1) {
		return false
	}
	h.cursor++
	h.notify(live)
	return true
}

// Reset clears the stack to the single entry initial.
func (h *History) Reset(initial *image.NRGBA) {
	h.entries = nil
	h.cursor = 0
	if initial == nil {
		return
	}
	snap := make([]byte, len(initial.Pix))
	copy(snap, initial.Pix)
	h.entries = append(h.entries, snap)
}

// Clear drops every entry.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = 0
}

// restore copies entry idx into live. A size mismatch leaves both live and
// the cursor untouched.
func (h *History) restore(live *image.NRGBA, idx int) bool {
	if live == nil {
		return false
	}
	snap := h.entries[idx]
	if len(snap) != len(live.Pix) {
		logger().WithFields(logrus.Fields{
			"snapshot": len(snap),
			"live":     len(live.Pix),
		}).Error("history: snapshot size does not match live buffer")
		return false
	}
	copy(live.Pix, snap)
	logger().WithFields(logrus.Fields{"len": len(h.entries), "cursor": idx}).Debug("history restore")
	return true
}

// notify hands the encoded live buffer to the persistence hook. Failures
// are logged only; the in-memory stack stays authoritative.
func (h *History) notify(live *image.NRGBA) {
	if h.persist == nil || live == nil {
		return
	}
	data, err := EncodeSnapshot(live)
	if err != nil {
		logger().WithError(err).Warn("history: snapshot encode failed")
		return
	}
	if err := h.persist(data); err != nil {
		logger().WithError(err).Warn("history: persistence hook failed")
	}
}
