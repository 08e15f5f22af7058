package layout

import (
	"fmt"
	"math"

	"github.com/dshills/caret/internal/engine/buffer"
	"github.com/dshills/caret/internal/engine/lines"
	"github.com/dshills/caret/internal/metrics"
)

// DefaultCaretWidth is the width of the caret rectangle.
const DefaultCaretWidth = 2

// Engine answers geometry queries over a line index.
//
// Every query takes the style explicitly. Widths are measured per line and
// kept in a WidthCache; without the cache each query re-measures every
// prefix of its line, which is O(line length) measurements per call.
type Engine struct {
	provider   metrics.Provider
	caretWidth float64
	overflow   OverflowPolicy
	cacheSize  int
	widths     *WidthCache
}

// Option configures an Engine.
type Option func(*Engine)

// WithCaretWidth sets the caret rectangle width.
func WithCaretWidth(w float64) Option {
	return func(e *Engine) {
		if w >= 0 {
			e.caretWidth = w
		}
	}
}

// WithOverflowPolicy sets where hit tests past a line's end land.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(e *Engine) {
		e.overflow = p
	}
}

// WithWidthCacheSize bounds the number of cached lines (0 = unlimited).
func WithWidthCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// New creates a geometry engine measuring with provider.
func New(provider metrics.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider:   provider,
		caretWidth: DefaultCaretWidth,
		overflow:   OverflowLineEnd,
		cacheSize:  DefaultWidthCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.widths = NewWidthCache(provider, e.cacheSize)
	return e
}

// Provider returns the metrics provider.
func (e *Engine) Provider() metrics.Provider {
	return e.provider
}

// SetProvider replaces the metrics provider and drops cached widths.
func (e *Engine) SetProvider(p metrics.Provider) {
	e.provider = p
	e.widths.SetProvider(p)
}

// CaretWidth returns the caret rectangle width.
func (e *Engine) CaretWidth() float64 {
	return e.caretWidth
}

// Overflow returns the overflow policy.
func (e *Engine) Overflow() OverflowPolicy {
	return e.overflow
}

// Widths returns the width cache. The owner invalidates it on edits.
func (e *Engine) Widths() *WidthCache {
	return e.widths
}

// lineWidths returns the measured widths of line i.
func (e *Engine) lineWidths(i int, line lines.Line, style metrics.Style) *LineWidths {
	return e.widths.Get(i, line.Text, style)
}

// prefix returns the width of line from its start up to offset.
func (e *Engine) prefix(i int, line lines.Line, offset buffer.Offset, style metrics.Style) float64 {
	return e.lineWidths(i, line, style).At(offset - line.Start)
}

// checkRange validates r against the index.
func checkRange(idx *lines.Index, r buffer.Range) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: %s", buffer.ErrInvalidRange, r)
	}
	if r.End > idx.Len() {
		return fmt.Errorf("%w: %s exceeds [0:%d]", buffer.ErrInvalidRange, r, idx.Len())
	}
	return nil
}

// CaretRect returns the caret rectangle at pos.
// Positions outside the document are clamped to it.
func (e *Engine) CaretRect(idx *lines.Index, pos buffer.Offset, style metrics.Style) Rect {
	pos = buffer.Clamp(pos, idx.Len())
	lh := e.provider.LineHeight(style)
	i, line := idx.Containing(pos)
	return Rect{
		X:      e.prefix(i, line, pos, style),
		Y:      float64(i) * lh,
		Width:  e.caretWidth,
		Height: lh,
	}
}

// SelectionRects returns one rectangle per non-empty line the range touches.
//
// An empty range yields a single zero-width rectangle at the caret position
// flagged as holding both ends. Otherwise the rectangle on the range's start
// line holds the start and the one on its end line holds the end. Inverted
// or out-of-bounds ranges are rejected with buffer.ErrInvalidRange.
func (e *Engine) SelectionRects(idx *lines.Index, r buffer.Range, style metrics.Style) ([]SelectionRect, error) {
	if err := checkRange(idx, r); err != nil {
		return nil, err
	}

	if r.IsEmpty() {
		caret := e.CaretRect(idx, r.Start, style)
		caret.Width = 0
		return []SelectionRect{{
			Rect:             caret,
			ContainsStart:    true,
			ContainsEnd:      true,
			WritingDirection: LeftToRight,
		}}, nil
	}

	lh := e.provider.LineHeight(style)
	startLine, _ := idx.Containing(r.Start)
	endLine, _ := idx.Containing(r.End)

	rects := make([]SelectionRect, 0, endLine-startLine+1)
	for i := startLine; i <= endLine; i++ {
		line, _ := idx.At(i)
		if line.IsEmpty() {
			continue
		}
		w := e.lineWidths(i, line, style)
		s := max(r.Start, line.Start) - line.Start
		end := min(r.End, line.End) - line.Start
		x := w.At(s)
		rects = append(rects, SelectionRect{
			Rect: Rect{
				X:      x,
				Y:      float64(i) * lh,
				Width:  w.At(end) - x,
				Height: lh,
			},
			ContainsStart:    i == startLine,
			ContainsEnd:      i == endLine,
			WritingDirection: LeftToRight,
		})
	}
	return rects, nil
}

// FirstRect returns the rectangle covering the range on its start line.
// A range starting at the end of the document yields a zero-width rectangle
// at the document's intrinsic width.
func (e *Engine) FirstRect(idx *lines.Index, r buffer.Range, style metrics.Style) (Rect, error) {
	if err := checkRange(idx, r); err != nil {
		return Rect{}, err
	}

	lh := e.provider.LineHeight(style)
	i, line := idx.Containing(r.Start)

	if r.Start == idx.Len() {
		return Rect{
			X:      e.IntrinsicSize(idx, style).Width,
			Y:      float64(i) * lh,
			Height: lh,
		}, nil
	}

	w := e.lineWidths(i, line, style)
	x := w.At(r.Start - line.Start)
	return Rect{
		X:      x,
		Y:      float64(i) * lh,
		Width:  w.At(min(r.End, line.End)-line.Start) - x,
		Height: lh,
	}, nil
}

// ClosestOffset returns the offset nearest to p.
//
// The line is floor(p.Y / lineHeight) clamped to the document. Within the
// line, a point inside a character's band maps to the offset before it, or
// after it once past the band's midpoint. Points left of the line map to
// its start; points right of it follow the overflow policy.
func (e *Engine) ClosestOffset(idx *lines.Index, p Point, style metrics.Style) buffer.Offset {
	i := e.lineAt(idx, p.Y, style)
	line, _ := idx.At(i)

	if p.X <= 0 || math.IsNaN(p.X) {
		return line.Start
	}

	w := e.lineWidths(i, line, style)
	for c := range w.Len() {
		left, right := w.Prefix[c], w.Prefix[c+1]
		if p.X < right {
			if p.X-left > (right-left)/2 {
				return line.Start + c + 1
			}
			return line.Start + c
		}
	}
	if p.X <= w.Width() {
		return line.End
	}

	switch e.overflow {
	case OverflowLineStart:
		return line.Start
	case OverflowDocumentStart:
		return 0
	}
	return line.End
}

// lineAt returns the index of the line at vertical position y.
func (e *Engine) lineAt(idx *lines.Index, y float64, style metrics.Style) int {
	lh := e.provider.LineHeight(style)
	if lh <= 0 || y <= 0 || math.IsNaN(y) {
		return 0
	}
	i := math.Floor(y / lh)
	if i >= float64(idx.Count()-1) {
		return idx.Count() - 1
	}
	return int(i)
}

// ClosestOffsetWithin is ClosestOffset clamped into r.
func (e *Engine) ClosestOffsetWithin(idx *lines.Index, p Point, r buffer.Range, style metrics.Style) (buffer.Offset, error) {
	if err := checkRange(idx, r); err != nil {
		return 0, err
	}
	return r.ClampOffset(e.ClosestOffset(idx, p, style)), nil
}

// CharacterRangeAt returns the single-character range starting at the
// offset closest to p. At the end of the document the range is empty.
func (e *Engine) CharacterRangeAt(idx *lines.Index, p Point, style metrics.Style) buffer.Range {
	o := e.ClosestOffset(idx, p, style)
	return buffer.NewRange(o, min(o+1, idx.Len()))
}

// IntrinsicSize returns the size needed to show every line: the widest line
// by the line count times the line height, both rounded up.
func (e *Engine) IntrinsicSize(idx *lines.Index, style metrics.Style) Size {
	var width float64
	for line := range idx.Lines() {
		width = max(width, e.lineWidths(line.Index, line, style).Width())
	}
	return Size{
		Width:  width,
		Height: float64(idx.Count()) * e.provider.LineHeight(style),
	}.Ceil()
}
