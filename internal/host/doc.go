// Package host is a terminal front end for the text engine.
//
// It plays the part a GUI toolkit would: Terminal wraps a tcell screen,
// View paints an engine's text, selection and caret using only the
// engine's geometry queries, and translates keys and mouse events into
// engine edits and selection changes. EngineOptions turns a loaded
// configuration into engine options.
//
// Measurement is done in layout units by the configured metrics provider.
// With the default cell provider one unit is one terminal cell.
package host
