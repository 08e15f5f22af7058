package buffer

import (
	"fmt"
	"sync/atomic"
)

// Offset is a position in the buffer measured in extended grapheme clusters.
// Valid offsets lie in [0, Len()]; Len() itself is the end-of-document
// position and has no character at it.
type Offset = int

// Compare returns -1 if a < b, 0 if a == b, 1 if a > b.
func Compare(a, b Offset) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Advance moves pos by delta and reports whether the result stays
// within [0, length].
func Advance(pos Offset, delta int, length int) (Offset, bool) {
	next := pos + delta
	if next < 0 || next > length {
		return 0, false
	}
	return next, true
}

// Clamp limits pos to [0, length].
func Clamp(pos Offset, length int) Offset {
	if pos < 0 {
		return 0
	}
	if pos > length {
		return length
	}
	return pos
}

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in grapheme clusters from the start of the line.
type Point struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if c := Compare(p.Line, other.Line); c != 0 {
		return c
	}
	return Compare(p.Column, other.Column)
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// RevisionID uniquely identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}
