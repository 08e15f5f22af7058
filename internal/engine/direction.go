package engine

import (
	"fmt"

	"github.com/dshills/caret/internal/layout"
)

// Direction is a movement direction for position queries.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Backward reports whether the direction moves towards the document start.
func (d Direction) Backward() bool {
	return d == Left || d == Up
}

// Vertical reports whether the direction moves between lines.
func (d Direction) Vertical() bool {
	return d == Up || d == Down
}

// WritingDirection is the direction text runs in.
type WritingDirection = layout.WritingDirection

// Writing directions.
const (
	Natural     = layout.Natural
	LeftToRight = layout.LeftToRight
	RightToLeft = layout.RightToLeft
)
