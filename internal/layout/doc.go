// Package layout answers geometry questions about laid-out text: where the
// caret is, which rectangles a selection covers and which offset lies under
// a point.
//
// Text is laid out as one visual row per line of the line index, with no
// wrapping. Row i spans [i*lineHeight, (i+1)*lineHeight) vertically and
// characters advance left to right by their measured widths.
//
// # Width cache
//
// Measuring is the expensive part of every query. Engine keeps the prefix
// widths of each line in a WidthCache keyed by line index and validated by
// a hash of the line's text and font. The owner of the buffer calls
// InvalidateFrom with the first line an edit touched; lines before it keep
// their entries.
//
// # Hit testing past the end of a line
//
// ClosestOffset's behaviour for points right of a line's text is an
// OverflowPolicy. OverflowLineEnd, the default, keeps ClosestOffset
// monotonic in x. OverflowLineStart and OverflowDocumentStart exist for
// hosts that expect those fallbacks.
package layout
