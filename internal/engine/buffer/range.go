package buffer

import "fmt"

// Range represents a span of the buffer.
// Start is inclusive, End is exclusive: [Start, End).
//
// A Range is never reordered on construction. Ranges with Start > End can be
// built and compared, but every operation that maps a range onto buffer
// contents rejects them with ErrInvalidRange. Use Normalize to opt into the
// forgiving interpretation.
type Range struct {
	Start Offset
	End   Offset
}

// NewRange creates a new Range from start and end offsets.
func NewRange(start, end Offset) Range {
	return Range{Start: start, End: end}
}

// Collapsed returns an empty range at offset.
func Collapsed(offset Offset) Range {
	return Range{Start: offset, End: offset}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the number of characters covered by the range.
// Inverted ranges have length 0.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if Start <= End and Start is non-negative.
func (r Range) IsValid() bool {
	return r.Start >= 0 && r.Start <= r.End
}

// Within reports whether the range is valid and fits in [0, length].
func (r Range) Within(length int) bool {
	return r.IsValid() && r.End <= length
}

// Normalize returns the range with Start and End ordered.
func (r Range) Normalize() Range {
	if r.Start > r.End {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// ClampTo returns the range with both ends clamped into [0, length].
// The relative order of Start and End is preserved.
func (r Range) ClampTo(length int) Range {
	return Range{Start: Clamp(r.Start, length), End: Clamp(r.End, length)}
}

// ClampOffset clamps offset into [Start, End] of a valid range.
func (r Range) ClampOffset(offset Offset) Offset {
	if offset < r.Start {
		return r.Start
	}
	if offset > r.End {
		return r.End
	}
	return offset
}

// Contains returns true if the given offset is within the range.
func (r Range) Contains(offset Offset) bool {
	return offset >= r.Start && offset < r.End
}

// ContainsRange returns true if the given range is entirely within this range.
func (r Range) ContainsRange(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Overlaps returns true if this range overlaps with another range.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Intersect returns the intersection of two ranges, or an empty range if they don't overlap.
func (r Range) Intersect(other Range) Range {
	start := max(r.Start, other.Start)
	end := min(r.End, other.End)
	if start >= end {
		return Range{Start: start, End: start}
	}
	return Range{Start: start, End: end}
}

// Union returns the smallest range that contains both ranges.
func (r Range) Union(other Range) Range {
	return Range{Start: min(r.Start, other.Start), End: max(r.End, other.End)}
}

// Shift returns a new range shifted by the given delta.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}
