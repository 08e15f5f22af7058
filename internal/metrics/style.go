package metrics

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Default style values.
const (
	DefaultFontFamily = "basic"
	DefaultFontSize   = 13
)

// Font references a face by family and size.
type Font struct {
	Family string
	Size   float64 // Size in pixels; zero means the face's nominal size
}

// String returns a human-readable representation of the font.
func (f Font) String() string {
	return fmt.Sprintf("%s %gpx", f.Family, f.Size)
}

// Style is the visual style passed to every measurement.
// Style is a comparable value and can be used as a map key.
type Style struct {
	Foreground colorful.Color
	Background colorful.Color // Selection background
	Font       Font
}

// DefaultStyle returns light text on a blue selection using the basic face.
func DefaultStyle() Style {
	return Style{
		Foreground: colorful.Color{R: 0.9, G: 0.9, B: 0.9},
		Background: colorful.Color{R: 0.15, G: 0.3, B: 0.55},
		Font:       Font{Family: DefaultFontFamily, Size: DefaultFontSize},
	}
}

// ParseStyle builds a style from hex colours ("#rrggbb") and a font.
func ParseStyle(fg, bg string, font Font) (Style, error) {
	s := DefaultStyle()
	if fg != "" {
		c, err := colorful.Hex(fg)
		if err != nil {
			return Style{}, fmt.Errorf("foreground %q: %w", fg, err)
		}
		s.Foreground = c
	}
	if bg != "" {
		c, err := colorful.Hex(bg)
		if err != nil {
			return Style{}, fmt.Errorf("background %q: %w", bg, err)
		}
		s.Background = c
	}
	if font.Family != "" {
		s.Font.Family = font.Family
	}
	if font.Size > 0 {
		s.Font.Size = font.Size
	}
	return s, nil
}

// WithFont returns a copy of s using font.
func (s Style) WithFont(font Font) Style {
	s.Font = font
	return s
}

// String returns a human-readable representation of the style.
func (s Style) String() string {
	return fmt.Sprintf("%s on %s, %s", s.Foreground.Hex(), s.Background.Hex(), s.Font)
}

// Contrast returns the CIE94 distance between foreground and background.
// Hosts use it to decide whether selected text stays readable.
func (s Style) Contrast() float64 {
	return s.Foreground.DistanceCIE94(s.Background)
}
