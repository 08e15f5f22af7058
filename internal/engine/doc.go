// Package engine provides the text input engine for Caret.
//
// The engine package is the facade a host toolkit talks to. It combines a
// grapheme-indexed buffer, a selection, undo/redo history and a geometry
// query engine into one API that answers the questions an input system asks:
// what text is where, what to do with typed characters, and where on screen
// a given character or point lies.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: text storage addressed by character (grapheme cluster) offsets
//   - lines: line index derived from a buffer snapshot
//   - cursor: anchored selections and their transformation through edits
//   - history: command-based undo/redo
//
// Geometry is delegated to the layout package, which measures text through a
// metrics.Provider and keeps per-line prefix widths in a cache.
//
// # Concurrency
//
// An Engine performs no locking. It belongs to the goroutine that owns the
// host's event loop; hosts that touch it from elsewhere must serialize calls.
//
// # Basic Usage
//
//	e := engine.New(engine.WithContent("Sphinx of black quartz."))
//
//	// Replace a word
//	_ = e.Replace(engine.Range{Start: 7, End: 9}, "regarding")
//
//	// Type at the caret
//	_ = e.SetSelectedRange(engine.Range{Start: 0, End: 0})
//	_ = e.InsertText("> ")
//
//	// Backspace
//	_ = e.DeleteBackward()
//
//	e.Undo()
//
// # Geometry
//
// Every geometry query uses the engine's current style explicitly:
//
//	r := e.CaretRect(4)
//	rects, _ := e.SelectionRects(engine.Range{Start: 0, End: 6})
//	off := e.ClosestOffset(engine.Location{X: 30, Y: 5})
//
// What a hit test past a line's end returns is configured with
// WithOverflowPolicy.
//
// # Invalidation
//
// Hosts register a callback with WithInvalidationHandler. It is called after
// every content, selection or style change with the affected range, so the
// host knows what to redraw.
//
// # Read-Only Mode
//
//	e := engine.New(engine.WithContent("fixed"), engine.WithReadOnly())
//	err := e.InsertText("x") // errors.Is(err, engine.ErrReadOnly)
//
// # Error Handling
//
// Malformed input never panics. Operations return:
//
//   - ErrOffsetOutOfBounds: an offset outside [0, Len()]
//   - ErrInvalidRange: an inverted range
//   - ErrNoActiveSelection: an edit that needs a selection when none is set
//   - ErrNothingToUndo, ErrNothingToRedo: empty history stacks
//   - ErrReadOnly: an edit on a read-only engine
//
// A failed operation leaves the engine unchanged.
package engine
