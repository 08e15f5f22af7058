package engine

import (
	"github.com/dshills/caret/internal/layout"
	"github.com/dshills/caret/internal/logging"
	"github.com/dshills/caret/internal/metrics"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 1000
	DefaultCaretWidth     = layout.DefaultCaretWidth
	DefaultWidthCacheSize = layout.DefaultWidthCacheSize
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithStyle sets the initial style.
func WithStyle(style metrics.Style) Option {
	return func(e *Engine) {
		e.style = style
	}
}

// WithMetrics sets the metrics provider. The default measures with
// metrics.NewFaceProvider.
func WithMetrics(p metrics.Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
		}
	}
}

// WithCaretWidth sets the caret rectangle width.
func WithCaretWidth(w float64) Option {
	return func(e *Engine) {
		if w >= 0 {
			e.caretWidth = w
		}
	}
}

// WithOverflowPolicy sets where hit tests past a line's end land.
func WithOverflowPolicy(p layout.OverflowPolicy) Option {
	return func(e *Engine) {
		e.overflow = p
	}
}

// WithWidthCacheSize bounds the number of lines with cached widths.
func WithWidthCacheSize(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.widthCacheSize = n
		}
	}
}

// WithInvalidationHandler registers the host's redraw callback.
func WithInvalidationHandler(fn InvalidationHandler) Option {
	return func(e *Engine) {
		e.onInvalidate = fn
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMarkedText installs an input-method composition handler.
func WithMarkedText(m MarkedText) Option {
	return func(e *Engine) {
		if m != nil {
			e.marked = m
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxUndoEntries = n
		}
	}
}

// WithNFC stores text in Unicode normalization form C.
func WithNFC() Option {
	return func(e *Engine) {
		e.nfc = true
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}
