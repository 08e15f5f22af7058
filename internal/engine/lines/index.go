package lines

import (
	"fmt"
	"iter"
	"slices"
	"sort"

	"github.com/rivo/uniseg"

	"github.com/dshills/caret/internal/engine/buffer"
)

// Line is a contiguous span of the buffer between line breaks.
type Line struct {
	Index int           // 0-indexed line number
	Start buffer.Offset // Offset of the first character
	End   buffer.Offset // Offset of the terminating newline, or document end
	Text  string        // Line content without the newline
}

// String returns a human-readable representation of the line.
func (l Line) String() string {
	return fmt.Sprintf("line %d [%d:%d) %q", l.Index, l.Start, l.End, l.Text)
}

// Len returns the number of characters on the line.
func (l Line) Len() int {
	return l.End - l.Start
}

// IsEmpty returns true if the line has no characters.
func (l Line) IsEmpty() bool {
	return l.Start == l.End
}

// Range returns the span of the line's content.
func (l Line) Range() buffer.Range {
	return buffer.NewRange(l.Start, l.End)
}

// Contains reports whether offset lies on the line, end position included.
func (l Line) Contains(offset buffer.Offset) bool {
	return l.Start <= offset && offset <= l.End
}

// Scan lazily yields the lines of text. The sequence is finite and can be
// ranged over any number of times.
func Scan(text string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		var (
			line     Line
			offset   int
			pos      int
			lineByte int
			state    = -1
			cluster  string
		)
		rest := text
		for len(rest) > 0 {
			cluster, rest, _, state = uniseg.StepString(rest, state)
			if cluster == "\n" {
				line.End = offset
				line.Text = text[lineByte:pos]
				if !yield(line) {
					return
				}
				line = Line{Index: line.Index + 1, Start: offset + 1}
				lineByte = pos + len(cluster)
			}
			pos += len(cluster)
			offset++
		}
		line.End = offset
		line.Text = text[lineByte:]
		yield(line)
	}
}

// Split returns all lines of text. It always returns at least one line.
func Split(text string) []Line {
	return slices.Collect(Scan(text))
}

// Index is the line table of one buffer snapshot.
type Index struct {
	snap  *buffer.Snapshot
	lines []Line
}

// NewIndex builds the line index of a snapshot.
func NewIndex(snap *buffer.Snapshot) *Index {
	return &Index{
		snap:  snap,
		lines: Split(snap.Text()),
	}
}

// FromString builds an index over standalone text.
func FromString(text string) *Index {
	return NewIndex(buffer.NewBufferFromString(text).Snapshot())
}

// Snapshot returns the snapshot the index was built from.
func (x *Index) Snapshot() *buffer.Snapshot {
	return x.snap
}

// Revision returns the buffer revision the index describes.
func (x *Index) Revision() buffer.RevisionID {
	return x.snap.RevisionID()
}

// Len returns the document length in characters.
func (x *Index) Len() int {
	return x.snap.Len()
}

// Count returns the number of lines. It is never less than one.
func (x *Index) Count() int {
	return len(x.lines)
}

// At returns line i.
func (x *Index) At(i int) (Line, bool) {
	if i < 0 || i >= len(x.lines) {
		return Line{}, false
	}
	return x.lines[i], true
}

// Lines returns a restartable sequence over all lines.
func (x *Index) Lines() iter.Seq[Line] {
	return slices.Values(x.lines)
}

// Containing returns the first line whose span includes offset.
//
// Offsets outside [0, Len()] have no containing line; line 0 is returned for
// them so that malformed input never panics. Callers must not rely on that
// fallback for correctness.
func (x *Index) Containing(offset buffer.Offset) (int, Line) {
	if offset < 0 || offset > x.snap.Len() {
		return 0, x.lines[0]
	}
	// Lines are contiguous, so the first line ending at or after offset
	// also starts at or before it.
	i := sort.Search(len(x.lines), func(i int) bool {
		return x.lines[i].End >= offset
	})
	if i == len(x.lines) {
		return 0, x.lines[0]
	}
	return i, x.lines[i]
}

// Point converts an offset to line/column.
func (x *Index) Point(offset buffer.Offset) buffer.Point {
	offset = buffer.Clamp(offset, x.snap.Len())
	i, line := x.Containing(offset)
	return buffer.Point{Line: i, Column: offset - line.Start}
}

// Offset converts line/column to an offset.
// The line is clamped to the document and the column to the line.
func (x *Index) Offset(p buffer.Point) buffer.Offset {
	i := min(max(p.Line, 0), len(x.lines)-1)
	line := x.lines[i]
	col := min(max(p.Column, 0), line.Len())
	return line.Start + col
}

// Chars returns the grapheme clusters of line i.
func (x *Index) Chars(i int) []string {
	line, ok := x.At(i)
	if !ok {
		return nil
	}
	chars := make([]string, 0, line.Len())
	x.snap.Chars(line.Start, line.End, func(_ buffer.Offset, c string) bool {
		chars = append(chars, c)
		return true
	})
	return chars
}
