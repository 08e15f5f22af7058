package engine

import "github.com/dshills/caret/internal/engine/buffer"

// MarkedText is the extension point for input-method composition.
//
// The engine forwards marked-text calls to it and never depends on its
// behaviour, so a no-op implementation leaves every other operation intact.
type MarkedText interface {
	// MarkedRange returns the range of provisional text, if any.
	MarkedRange() (buffer.Range, bool)

	// SetMarkedText installs provisional text with the given selection
	// inside it.
	SetMarkedText(text string, selected buffer.Range)

	// Unmark commits the provisional text.
	Unmark()
}

// NopMarkedText ignores composition entirely.
type NopMarkedText struct{}

// MarkedRange always reports no marked text.
func (NopMarkedText) MarkedRange() (buffer.Range, bool) { return buffer.Range{}, false }

// SetMarkedText does nothing.
func (NopMarkedText) SetMarkedText(string, buffer.Range) {}

// Unmark does nothing.
func (NopMarkedText) Unmark() {}
