package cursor

import (
	"fmt"

	"github.com/dshills/caret/internal/engine/buffer"
)

type (
	// Offset is an alias for buffer.Offset for convenience.
	Offset = buffer.Offset

	// Range is an alias for buffer.Range for convenience.
	Range = buffer.Range
)

// Selection represents a range of selected text.
// Anchor is where the selection started; Head is the current cursor position.
// When Anchor == Head, this represents a cursor with no selection.
type Selection struct {
	Anchor Offset
	Head   Offset
}

// NewSelection creates a selection from anchor to head.
func NewSelection(anchor, head Offset) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewCursorSelection creates a selection representing just a cursor (no extent).
func NewCursorSelection(offset Offset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// NewRangeSelection creates a forward selection covering the given range.
// An inverted range produces a backward selection.
func NewRangeSelection(r Range) Selection {
	return Selection{Anchor: r.Start, Head: r.End}
}

// IsEmpty returns true if the selection has no extent (just a cursor).
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Len returns the number of selected characters.
func (s Selection) Len() int {
	return s.End() - s.Start()
}

// Range returns the selection as a range (always Start <= End).
func (s Selection) Range() Range {
	return buffer.NewRange(s.Start(), s.End())
}

// Start returns the lower bound of the selection.
func (s Selection) Start() Offset {
	return min(s.Anchor, s.Head)
}

// End returns the upper bound of the selection.
func (s Selection) End() Offset {
	return max(s.Anchor, s.Head)
}

// IsBackward returns true if the selection extends backward (head < anchor).
func (s Selection) IsBackward() bool {
	return s.Head < s.Anchor
}

// Extend returns a new selection extended to include the given offset.
// The anchor remains fixed; only the head moves.
func (s Selection) Extend(offset Offset) Selection {
	return Selection{Anchor: s.Anchor, Head: offset}
}

// Clamp returns a selection clamped to the valid range [0, maxOffset].
func (s Selection) Clamp(maxOffset Offset) Selection {
	return Selection{
		Anchor: buffer.Clamp(s.Anchor, maxOffset),
		Head:   buffer.Clamp(s.Head, maxOffset),
	}
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Cursor(%d)", s.Head)
	}
	dir := "→"
	if s.IsBackward() {
		dir = "←"
	}
	return fmt.Sprintf("Selection(%d%s%d)", s.Anchor, dir, s.Head)
}
