// Package buffer provides the offset and range model and the mutable text
// buffer at the bottom of the engine.
//
// All positions are Offsets: indexes into the buffer's sequence of extended
// grapheme clusters, as segmented by github.com/rivo/uniseg. An Offset of
// Len() is the end-of-document position.
//
// The buffer package provides:
//
//   - Offset comparison, advancing and clamping
//   - Half-open Ranges that tolerate inversion on construction but are
//     rejected with ErrInvalidRange when applied to the buffer
//   - Replace/Insert/Delete returning typed errors instead of panicking
//   - Line ending normalisation to \n and optional Unicode normalisation
//   - Revision tracking and immutable snapshots
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("Sphinx of black quartz.")
//
//	r, err := buf.Replace(buffer.NewRange(7, 9), "regarding")
//	// r == [7:16), buf.Text() == "Sphinx regarding black quartz."
//
//	_, err = buf.Replace(buffer.NewRange(9, 7), "x")
//	// errors.Is(err, buffer.ErrInvalidRange)
//
// Thread Safety:
//
// Buffer is not safe for concurrent use. Snapshots are immutable and may be
// read from any goroutine.
package buffer
