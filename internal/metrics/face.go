package metrics

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FaceProvider measures text with font faces.
type FaceProvider struct {
	faces    map[string]font.Face
	fallback font.Face
}

// FaceOption configures a FaceProvider.
type FaceOption func(*FaceProvider)

// WithFace registers face for a font family.
func WithFace(family string, face font.Face) FaceOption {
	return func(p *FaceProvider) {
		if face != nil {
			p.faces[family] = face
		}
	}
}

// WithFallbackFace sets the face used for unregistered families.
func WithFallbackFace(face font.Face) FaceOption {
	return func(p *FaceProvider) {
		if face != nil {
			p.fallback = face
		}
	}
}

// NewFaceProvider creates a face provider.
// basicfont.Face7x13 is registered as DefaultFontFamily and is the fallback.
func NewFaceProvider(opts ...FaceOption) *FaceProvider {
	p := &FaceProvider{
		faces:    map[string]font.Face{DefaultFontFamily: basicfont.Face7x13},
		fallback: basicfont.Face7x13,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Face returns the face for a family.
func (p *FaceProvider) Face(family string) font.Face {
	if f, ok := p.faces[family]; ok {
		return f
	}
	return p.fallback
}

// Measure implements Provider.
func (p *FaceProvider) Measure(text string, style Style) Size {
	face := p.Face(style.Font.Family)
	scale := p.scale(face, style)
	return Size{
		Width:  toFloat(font.MeasureString(face, text)) * scale,
		Height: toFloat(face.Metrics().Height) * scale,
	}
}

// LineHeight implements Provider.
func (p *FaceProvider) LineHeight(style Style) float64 {
	face := p.Face(style.Font.Family)
	return toFloat(face.Metrics().Height) * p.scale(face, style)
}

// scale maps the face's nominal height to the requested font size.
func (p *FaceProvider) scale(face font.Face, style Style) float64 {
	nominal := toFloat(face.Metrics().Height)
	if style.Font.Size <= 0 || nominal <= 0 {
		return 1
	}
	return style.Font.Size / nominal
}

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
