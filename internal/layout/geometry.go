package layout

import (
	"fmt"

	"github.com/dshills/caret/internal/metrics"
)

// Size is an alias for metrics.Size for convenience.
type Size = metrics.Size

// Point is a location in layout coordinates. Y grows downwards.
type Point struct {
	X, Y float64
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// String returns a human-readable representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// WritingDirection is the direction text runs in.
type WritingDirection int

const (
	// Natural defers to the text's own direction.
	Natural WritingDirection = iota
	LeftToRight
	RightToLeft
)

// String returns the direction name.
func (d WritingDirection) String() string {
	switch d {
	case LeftToRight:
		return "ltr"
	case RightToLeft:
		return "rtl"
	}
	return "natural"
}

// SelectionRect is one line's share of a selection.
type SelectionRect struct {
	Rect
	ContainsStart    bool // The rect holds the range's start offset
	ContainsEnd      bool // The rect holds the range's end offset
	IsVertical       bool
	WritingDirection WritingDirection
}

// String keeps the flags visible; the embedded Rect would otherwise
// supply its own String.
func (s SelectionRect) String() string {
	return fmt.Sprintf("%s start=%t end=%t %s", s.Rect, s.ContainsStart, s.ContainsEnd, s.WritingDirection)
}

// OverflowPolicy decides where a hit test lands when the point lies past
// the end of its line.
type OverflowPolicy int

const (
	// OverflowLineEnd clamps to the end of the line.
	OverflowLineEnd OverflowPolicy = iota
	// OverflowLineStart returns the start of the line.
	OverflowLineStart
	// OverflowDocumentStart returns offset 0.
	OverflowDocumentStart
)

// String returns the policy name as used in configuration files.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowLineStart:
		return "line-start"
	case OverflowDocumentStart:
		return "document-start"
	}
	return "line-end"
}

// ParseOverflowPolicy parses a policy name.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "line-end":
		return OverflowLineEnd, nil
	case "line-start":
		return OverflowLineStart, nil
	case "document-start":
		return OverflowDocumentStart, nil
	}
	return OverflowLineEnd, fmt.Errorf("unknown overflow policy %q", s)
}
