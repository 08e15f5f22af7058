package buffer

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfBounds = errors.New("offset out of bounds")
	ErrInvalidRange      = errors.New("invalid range")
)

// Buffer is a grapheme-addressed mutable text buffer.
//
// Buffer performs no internal synchronization. It is owned by exactly one
// engine and must not be shared across goroutines without external
// serialization.
type Buffer struct {
	text       string
	bounds     []int // byte offset of each cluster start, plus len(text)
	revisionID RevisionID
	normalize  bool
	form       norm.Form
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		bounds:     []int{0},
		revisionID: NewRevisionID(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.text = b.prepare(s)
	b.bounds = segment(b.text)
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	// Read everything first so CRLF pairs split across reads normalise correctly.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...), nil
}

// prepare normalises incoming text: line endings become \n and, when
// configured, the text is put into the configured Unicode normal form.
func (b *Buffer) prepare(s string) string {
	if strings.IndexByte(s, '\r') >= 0 {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	if b.normalize {
		s = b.form.String(s)
	}
	return s
}

// segment returns the cluster boundary table for s.
func segment(s string) []int {
	bounds := make([]int, 0, len(s)+1)
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		from, _ := g.Positions()
		bounds = append(bounds, from)
	}
	return append(bounds, len(s))
}

// Read Operations

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the number of grapheme clusters in the buffer.
func (b *Buffer) Len() int {
	return len(b.bounds) - 1
}

// ByteLen returns the length of the buffer in bytes.
func (b *Buffer) ByteLen() int {
	return len(b.text)
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	return len(b.text) == 0
}

// ByteOffset maps a character offset to a byte offset into Text().
// Offsets outside [0, Len()] are clamped.
func (b *Buffer) ByteOffset(offset Offset) int {
	return b.bounds[Clamp(offset, b.Len())]
}

// CharAt returns the grapheme cluster starting at offset.
func (b *Buffer) CharAt(offset Offset) (string, bool) {
	if offset < 0 || offset >= b.Len() {
		return "", false
	}
	return b.text[b.bounds[offset]:b.bounds[offset+1]], true
}

// TextRange returns the text covered by r.
func (b *Buffer) TextRange(r Range) (string, error) {
	if err := b.check(r); err != nil {
		return "", err
	}
	return b.text[b.bounds[r.Start]:b.bounds[r.End]], nil
}

// check validates that r maps onto buffer contents.
func (b *Buffer) check(r Range) error {
	if r.Start > r.End {
		return fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	if r.Start < 0 || r.End > b.Len() {
		return fmt.Errorf("%w: %s exceeds [0:%d]", ErrOffsetOutOfBounds, r, b.Len())
	}
	return nil
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the range now covered by the inserted text.
func (b *Buffer) Insert(offset Offset, text string) (Range, error) {
	if offset < 0 || offset > b.Len() {
		return Range{}, fmt.Errorf("%w: %d exceeds [0:%d]", ErrOffsetOutOfBounds, offset, b.Len())
	}
	return b.Replace(Collapsed(offset), text)
}

// Delete removes text in the given range.
func (b *Buffer) Delete(r Range) error {
	_, err := b.Replace(r, "")
	return err
}

// Replace replaces text in the given range with new text.
// Returns the range now covered by the replacement text, widened to whole
// characters when the text joins a neighbouring character.
// The buffer is left untouched when an error is returned.
func (b *Buffer) Replace(r Range, text string) (Range, error) {
	result, err := b.ApplyEdit(Edit{Range: r, NewText: text})
	if err != nil {
		return Range{}, err
	}
	return result.NewRange, nil
}

// ApplyEdit applies a single edit to the buffer.
// Applying the result's Inverse restores the previous text exactly.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	if err := b.check(edit.Range); err != nil {
		return EditResult{}, err
	}

	oldText, oldBounds := b.text, b.bounds
	lo, hi := oldBounds[edit.Range.Start], oldBounds[edit.Range.End]
	text := b.prepare(edit.NewText)

	b.text = oldText[:lo] + text + oldText[hi:]
	b.bounds = segment(b.text)
	b.revisionID = NewRevisionID()

	// The new text can join the clusters on either side of it, so the
	// reported ranges are widened to boundaries both texts share.
	shift := len(text) - (hi - lo)
	ns := sort.SearchInts(b.bounds, lo+1) - 1
	for !isBoundary(oldBounds, b.bounds[ns]) {
		ns--
	}
	ne := sort.SearchInts(b.bounds, lo+len(text))
	for !isBoundary(oldBounds, b.bounds[ne]-shift) {
		ne++
	}
	from, to := b.bounds[ns], b.bounds[ne]
	oldFrom := sort.SearchInts(oldBounds, from)
	oldTo := sort.SearchInts(oldBounds, to-shift)

	return EditResult{
		OldRange: Range{Start: oldFrom, End: oldTo},
		NewRange: Range{Start: ns, End: ne},
		OldText:  oldText[from : to-shift],
		NewText:  b.text[from:to],
		Delta:    b.Len() - (len(oldBounds) - 1),
	}, nil
}

func isBoundary(bounds []int, pos int) bool {
	_, ok := slices.BinarySearch(bounds, pos)
	return ok
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	return b.revisionID
}

// Snapshot returns a read-only view of the current buffer state.
// Later edits never change a snapshot.
func (b *Buffer) Snapshot() *Snapshot {
	return &Snapshot{
		text:       b.text,
		bounds:     b.bounds, // replaced, never mutated, on edit
		revisionID: b.revisionID,
	}
}
