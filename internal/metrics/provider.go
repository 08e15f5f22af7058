package metrics

import (
	"fmt"
	"math"
)

// Size is a width and height in layout units.
type Size struct {
	Width  float64
	Height float64
}

// String returns a human-readable representation of the size.
func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Ceil rounds both dimensions up.
func (s Size) Ceil() Size {
	return Size{Width: math.Ceil(s.Width), Height: math.Ceil(s.Height)}
}

// Provider measures styled text.
// Implementations must be deterministic for identical inputs.
type Provider interface {
	// Measure returns the size of text laid out on a single line.
	Measure(text string, style Style) Size

	// LineHeight returns the height of one line.
	LineHeight(style Style) float64
}

// ProviderFunc adapts a width function to a Provider with a fixed line height.
// It is mostly useful in tests.
type ProviderFunc struct {
	Width  func(text string, style Style) float64
	Height float64
}

// Measure implements Provider.
func (p ProviderFunc) Measure(text string, style Style) Size {
	return Size{Width: p.Width(text, style), Height: p.Height}
}

// LineHeight implements Provider.
func (p ProviderFunc) LineHeight(Style) float64 {
	return p.Height
}
