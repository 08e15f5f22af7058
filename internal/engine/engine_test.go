package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rivo/uniseg"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/caret/internal/engine/cursor"
	"github.com/dshills/caret/internal/layout"
	"github.com/dshills/caret/internal/logging"
	"github.com/dshills/caret/internal/metrics"
)

// cells returns an engine measuring 10x20 per terminal cell.
func cells(content string, opts ...Option) *Engine {
	opts = append([]Option{WithContent(content), WithMetrics(metrics.NewCellProvider(10, 20))}, opts...)
	return New(opts...)
}

func mustSelect(t *testing.T, e *Engine, start, end int) {
	t.Helper()
	if err := e.SetSelectedRange(Range{Start: start, End: end}); err != nil {
		t.Fatalf("select [%d:%d): %v", start, end, err)
	}
}

func selected(t *testing.T, e *Engine) Range {
	t.Helper()
	r, ok := e.SelectedRange()
	if !ok {
		t.Fatal("expected an active selection")
	}
	return r
}

// recorder collects invalidations.
type recorder struct {
	got []Invalidation
}

func (r *recorder) handle(inv Invalidation) {
	r.got = append(r.got, inv)
}

func (r *recorder) kinds() []InvalidationKind {
	out := make([]InvalidationKind, len(r.got))
	for i, inv := range r.got {
		out[i] = inv.Kind
	}
	return out
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	e := New()
	if e.Len() != 0 {
		t.Errorf("expected empty engine, got len %d", e.Len())
	}
	if e.HasText() {
		t.Error("empty engine should have no text")
	}
	if r := selected(t, e); r != (Range{}) {
		t.Errorf("expected caret at 0, got %s", r)
	}
}

func TestNewWithContent(t *testing.T) {
	e := New(WithContent("héllo 🇫🇷"))

	if e.Text() != "héllo 🇫🇷" {
		t.Errorf("expected %q, got %q", "héllo 🇫🇷", e.Text())
	}
	if e.Len() != 7 {
		t.Errorf("expected 7 characters, got %d", e.Len())
	}
}

func TestNewFromReader(t *testing.T) {
	e, err := NewFromReader(strings.NewReader("Hello, World!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "Hello, World!" {
		t.Errorf("expected %q, got %q", "Hello, World!", e.Text())
	}
}

func TestNewWithNFC(t *testing.T) {
	e := New(WithContent("e\u0301"), WithNFC())
	if e.Text() != "\u00e9" {
		t.Errorf("expected composed text, got %q", e.Text())
	}
}

func TestEngineIDsDiffer(t *testing.T) {
	if New().ID() == New().ID() {
		t.Error("engines should have distinct ids")
	}
}

func TestTextIn(t *testing.T) {
	e := New(WithContent("ab\ncd"))

	got, err := e.TextIn(Range{Start: 1, End: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "b\nc" {
		t.Errorf("expected %q, got %q", "b\nc", got)
	}

	if _, err := e.TextIn(Range{Start: 3, End: 1}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := e.TextIn(Range{Start: 0, End: 9}); !errors.Is(err, ErrOffsetOutOfBounds) {
		t.Errorf("expected ErrOffsetOutOfBounds, got %v", err)
	}
}

func TestPointConversion(t *testing.T) {
	e := New(WithContent("ab\ncd"))

	if p := e.PointAt(4); p != (Point{Line: 1, Column: 1}) {
		t.Errorf("expected 1:1, got %s", p)
	}
	if o := e.OffsetAt(Point{Line: 1, Column: 9}); o != 5 {
		t.Errorf("expected clamped offset 5, got %d", o)
	}
}

func TestLinesRebuiltAfterEdit(t *testing.T) {
	e := New(WithContent("ab"))
	before := e.Lines()
	if e.Lines() != before {
		t.Error("index should be reused while text is unchanged")
	}

	if err := e.InsertText("\n"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if e.Lines() == before {
		t.Error("index should be rebuilt after an edit")
	}
	if e.Lines().Count() != 2 {
		t.Errorf("expected 2 lines, got %d", e.Lines().Count())
	}
}

// ============================================================================
// Mutation
// ============================================================================

func TestReplaceSphinx(t *testing.T) {
	e := New(WithContent("Sphinx of black quartz."))
	mustSelect(t, e, 7, 9)

	if err := e.Replace(Range{Start: 7, End: 9}, "regarding"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if e.Text() != "Sphinx regarding black quartz." {
		t.Errorf("unexpected text %q", e.Text())
	}

	got, err := e.TextIn(Range{Start: 7, End: 16})
	if err != nil {
		t.Fatalf("text in: %v", err)
	}
	if got != "regarding" {
		t.Errorf("expected %q, got %q", "regarding", got)
	}
}

func TestReplaceRoundTrip(t *testing.T) {
	tests := []struct {
		content string
		r       Range
		text    string
	}{
		{"hello", Range{Start: 0, End: 0}, "¡"},
		{"hello", Range{Start: 1, End: 4}, ""},
		{"hello", Range{Start: 5, End: 5}, " 🇯🇵 world"},
		{"a\nb", Range{Start: 1, End: 2}, "\n\n"},
		{"", Range{}, "éx"},
	}

	for _, tt := range tests {
		e := New(WithContent(tt.content))
		if err := e.Replace(tt.r, tt.text); err != nil {
			t.Fatalf("replace %s in %q: %v", tt.r, tt.content, err)
		}
		n := uniseg.GraphemeClusterCount(tt.text)
		got, err := e.TextIn(Range{Start: tt.r.Start, End: tt.r.Start + n})
		if err != nil {
			t.Fatalf("text in: %v", err)
		}
		if got != tt.text {
			t.Errorf("round trip in %q: expected %q, got %q", tt.content, tt.text, got)
		}
	}
}

func TestReplaceCarriesSelection(t *testing.T) {
	e := New(WithContent("0123456789"))
	mustSelect(t, e, 6, 8)

	if err := e.Replace(Range{Start: 0, End: 2}, "abcd"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if r := selected(t, e); r != (Range{Start: 8, End: 10}) {
		t.Errorf("expected [8:10), got %s", r)
	}
}

func TestReplaceRejectsBadRanges(t *testing.T) {
	e := New(WithContent("hello"))
	rev := e.Revision()

	if err := e.Replace(Range{Start: 4, End: 2}, "x"); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if err := e.Replace(Range{Start: 2, End: 9}, "x"); !errors.Is(err, ErrOffsetOutOfBounds) {
		t.Errorf("expected ErrOffsetOutOfBounds, got %v", err)
	}
	if e.Text() != "hello" || e.Revision() != rev {
		t.Error("rejected replace should not change the buffer")
	}
	if e.CanUndo() {
		t.Error("rejected replace should not be recorded")
	}
}

func TestInsertTextAtCaret(t *testing.T) {
	e := New(WithContent("hello"))
	mustSelect(t, e, 2, 2)

	if err := e.InsertText("XY🇫🇷"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if e.Text() != "heXY🇫🇷llo" {
		t.Errorf("unexpected text %q", e.Text())
	}
	if e.Len() != 8 {
		t.Errorf("expected length 8, got %d", e.Len())
	}
	if r := selected(t, e); r != (Range{Start: 5, End: 5}) {
		t.Errorf("expected caret at 5, got %s", r)
	}
}

func TestInsertTextReplacesSelection(t *testing.T) {
	e := New(WithContent("hello world"))
	mustSelect(t, e, 0, 5)

	if err := e.InsertText("bye"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if e.Text() != "bye world" {
		t.Errorf("unexpected text %q", e.Text())
	}
	if r := selected(t, e); r != (Range{Start: 3, End: 3}) {
		t.Errorf("expected caret at 3, got %s", r)
	}
}

func TestInsertTextWithoutSelection(t *testing.T) {
	e := New(WithContent("hello"))
	e.ClearSelection()

	if err := e.InsertText("x"); !errors.Is(err, ErrNoActiveSelection) {
		t.Errorf("expected ErrNoActiveSelection, got %v", err)
	}
	if e.Text() != "hello" {
		t.Errorf("text should be unchanged, got %q", e.Text())
	}
}

func TestDeleteBackward(t *testing.T) {
	tests := []struct {
		name    string
		content string
		sel     Range
		want    string
		caret   int
	}{
		{"caret mid", "hello", Range{Start: 3, End: 3}, "helo", 2},
		{"caret end", "hello", Range{Start: 5, End: 5}, "hell", 4},
		{"selection", "hello", Range{Start: 1, End: 4}, "ho", 1},
		{"grapheme", "a🇫🇷b", Range{Start: 2, End: 2}, "ab", 1},
		{"newline", "a\nb", Range{Start: 2, End: 2}, "ab", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithContent(tt.content))
			mustSelect(t, e, tt.sel.Start, tt.sel.End)
			before := e.Len()

			if err := e.DeleteBackward(); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if e.Text() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, e.Text())
			}
			removed := max(tt.sel.Len(), 1)
			if before-e.Len() != removed {
				t.Errorf("expected %d characters removed, got %d", removed, before-e.Len())
			}
			if r := selected(t, e); r != (Range{Start: tt.caret, End: tt.caret}) {
				t.Errorf("expected caret at %d, got %s", tt.caret, r)
			}
		})
	}
}

func TestDeleteBackwardAtStart(t *testing.T) {
	rec := &recorder{}
	e := New(WithInvalidationHandler(rec.handle))
	rev := e.Revision()

	if err := e.DeleteBackward(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if r := selected(t, e); r != (Range{}) {
		t.Errorf("selection should be unchanged, got %s", r)
	}
	if e.Revision() != rev {
		t.Error("revision should be unchanged")
	}
	if e.CanUndo() {
		t.Error("no-op delete should not be recorded")
	}
	if len(rec.got) != 0 {
		t.Errorf("expected no invalidations, got %v", rec.got)
	}
}

func TestDeleteBackwardWithoutSelection(t *testing.T) {
	e := New(WithContent("abc"))
	e.ClearSelection()

	if err := e.DeleteBackward(); !errors.Is(err, ErrNoActiveSelection) {
		t.Errorf("expected ErrNoActiveSelection, got %v", err)
	}
}

func TestReadOnly(t *testing.T) {
	e := New(WithContent("fixed"), WithReadOnly())

	if err := e.InsertText("x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("insert: expected ErrReadOnly, got %v", err)
	}
	if err := e.DeleteBackward(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("delete: expected ErrReadOnly, got %v", err)
	}
	if err := e.Replace(Range{Start: 0, End: 1}, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("replace: expected ErrReadOnly, got %v", err)
	}
	if err := e.Undo(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("undo: expected ErrReadOnly, got %v", err)
	}
	if e.Text() != "fixed" {
		t.Errorf("text should be unchanged, got %q", e.Text())
	}

	e.SetReadOnly(false)
	if err := e.InsertText(">"); err != nil {
		t.Errorf("writable engine should accept edits: %v", err)
	}
}

// ============================================================================
// Undo/Redo
// ============================================================================

func TestUndoRedo(t *testing.T) {
	e := New(WithContent("hello"))
	mustSelect(t, e, 5, 5)

	if err := e.InsertText(" world"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if e.Text() != "hello" {
		t.Errorf("expected %q after undo, got %q", "hello", e.Text())
	}
	if r := selected(t, e); r != (Range{Start: 5, End: 5}) {
		t.Errorf("undo should restore the caret, got %s", r)
	}

	if err := e.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if e.Text() != "hello world" {
		t.Errorf("expected %q after redo, got %q", "hello world", e.Text())
	}
	if r := selected(t, e); r != (Range{Start: 11, End: 11}) {
		t.Errorf("redo should restore the caret, got %s", r)
	}
}

func TestUndoEmpty(t *testing.T) {
	e := New()
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestUndoRestoresSelection(t *testing.T) {
	e := New(WithContent("hello world"))
	if err := e.SetSelection(cursor.NewSelection(5, 0)); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := e.DeleteBackward(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}

	sel, ok := e.Selection()
	if !ok || sel != cursor.NewSelection(5, 0) {
		t.Errorf("expected backward selection 5←0, got %s", sel)
	}
}

func TestRedoIgnoresCurrentSelection(t *testing.T) {
	e := New(WithContent("hello world"))
	mustSelect(t, e, 0, 0)

	if err := e.InsertText("X"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	mustSelect(t, e, 6, 11)

	if err := e.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if e.Text() != "Xhello world" {
		t.Errorf("expected %q, got %q", "Xhello world", e.Text())
	}
	if got := selected(t, e); got != (Range{Start: 1, End: 1}) {
		t.Errorf("expected caret after the insert, got %s", got)
	}
}

func TestUndoJoinedCharacter(t *testing.T) {
	e := New(WithContent("e"))
	mustSelect(t, e, 1, 1)

	if err := e.InsertText("\u0301"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if e.Text() != "e\u0301" || e.Len() != 1 {
		t.Fatalf("expected one joined character, got %q (%d)", e.Text(), e.Len())
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if e.Text() != "e" {
		t.Errorf("expected undo to restore %q, got %q", "e", e.Text())
	}
	if got := selected(t, e); got != (Range{Start: 1, End: 1}) {
		t.Errorf("expected caret at 1, got %s", got)
	}
}

func TestTransaction(t *testing.T) {
	e := New()

	err := e.Transaction("type", func() error {
		for _, s := range []string{"a", "b", "c"} {
			if err := e.InsertText(s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if e.UndoCount() != 1 {
		t.Errorf("expected one undo entry, got %d", e.UndoCount())
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if e.Text() != "" {
		t.Errorf("expected empty text, got %q", e.Text())
	}
}

func TestTransactionRollback(t *testing.T) {
	e := New(WithContent("abc"))
	mustSelect(t, e, 3, 3)
	boom := errors.New("boom")

	err := e.Transaction("type", func() error {
		_ = e.InsertText("d")
		_ = e.InsertText("e")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if e.Text() != "abc" {
		t.Errorf("expected edits rolled back, got %q", e.Text())
	}
	if r, _ := e.SelectedRange(); r != (Range{Start: 3, End: 3}) {
		t.Errorf("expected caret restored to 3, got %s", r)
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("rolled back transaction should leave no history")
	}
}

func TestUndoGroup(t *testing.T) {
	e := New()

	e.BeginUndoGroup("words")
	_ = e.InsertText("one ")
	_ = e.InsertText("two")
	e.EndUndoGroup()
	_ = e.InsertText("!")

	if e.UndoCount() != 2 {
		t.Fatalf("expected 2 undo entries, got %d", e.UndoCount())
	}
	if name, _ := e.UndoName(); name != "Type '!'" {
		t.Errorf("unexpected undo name %q", name)
	}
	_ = e.Undo()
	if name, _ := e.UndoName(); name != "words" {
		t.Errorf("expected group name, got %q", name)
	}
	if name, ok := e.RedoName(); !ok || name != "Type '!'" {
		t.Errorf("unexpected redo name %q", name)
	}
	_ = e.Undo()
	if _, ok := e.UndoName(); ok {
		t.Error("expected nothing left to undo")
	}
	if e.Text() != "" {
		t.Errorf("expected empty text, got %q", e.Text())
	}
	if e.RedoCount() != 2 {
		t.Errorf("expected 2 redo entries, got %d", e.RedoCount())
	}

	e.ClearHistory()
	if e.CanRedo() {
		t.Error("history should be empty")
	}
}

func TestMaxUndoEntries(t *testing.T) {
	e := New(WithMaxUndoEntries(2))
	for range 5 {
		_ = e.InsertText("x")
	}
	if e.UndoCount() != 2 {
		t.Errorf("expected 2 undo entries, got %d", e.UndoCount())
	}

	e.SetMaxUndoEntries(1)
	if e.UndoCount() != 1 || e.MaxUndoEntries() != 1 {
		t.Errorf("expected limit 1, got %d entries (max %d)", e.UndoCount(), e.MaxUndoEntries())
	}
}

// ============================================================================
// Selection
// ============================================================================

func TestSetSelectedRange(t *testing.T) {
	e := New(WithContent("hello"))

	if err := e.SetSelectedRange(Range{Start: 4, End: 1}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if err := e.SetSelectedRange(Range{Start: 1, End: 6}); !errors.Is(err, ErrOffsetOutOfBounds) {
		t.Errorf("expected ErrOffsetOutOfBounds, got %v", err)
	}
	if r := selected(t, e); r != (Range{}) {
		t.Errorf("rejected selection should leave the old one, got %s", r)
	}

	mustSelect(t, e, 1, 4)
	if r := selected(t, e); r != (Range{Start: 1, End: 4}) {
		t.Errorf("expected [1:4), got %s", r)
	}
}

func TestSetSelectionBackward(t *testing.T) {
	e := New(WithContent("hello"))

	if err := e.SetSelection(cursor.NewSelection(4, 1)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if r := selected(t, e); r != (Range{Start: 1, End: 4}) {
		t.Errorf("expected ordered range [1:4), got %s", r)
	}
	if err := e.SetSelection(cursor.NewSelection(9, 1)); !errors.Is(err, ErrOffsetOutOfBounds) {
		t.Errorf("expected ErrOffsetOutOfBounds, got %v", err)
	}
}

func TestClearSelection(t *testing.T) {
	e := New(WithContent("hello"))
	e.ClearSelection()

	if _, ok := e.SelectedRange(); ok {
		t.Error("selection should be cleared")
	}
	if _, ok := e.Selection(); ok {
		t.Error("selection should be inactive")
	}
}

// ============================================================================
// Positions
// ============================================================================

func TestDocumentBounds(t *testing.T) {
	e := New(WithContent("a🇫🇷b"))

	if e.BeginningOfDocument() != 0 {
		t.Errorf("expected 0, got %d", e.BeginningOfDocument())
	}
	if e.EndOfDocument() != 3 {
		t.Errorf("expected 3, got %d", e.EndOfDocument())
	}
	if r := e.TextRange(3, 1); r != (Range{Start: 3, End: 1}) {
		t.Errorf("text range should keep argument order, got %s", r)
	}
}

func TestPosition(t *testing.T) {
	e := New(WithContent("hello"))

	tests := []struct {
		from, delta int
		want        int
		ok          bool
	}{
		{0, 3, 3, true},
		{3, -3, 0, true},
		{5, 0, 5, true},
		{4, 2, 0, false},
		{1, -2, 0, false},
		{9, 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := e.Position(tt.from, tt.delta)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("Position(%d, %d): expected (%d, %v), got (%d, %v)", tt.from, tt.delta, tt.want, tt.ok, got, ok)
		}
	}
}

func TestPositionInDirection(t *testing.T) {
	e := New(WithContent("hello\nhi\nworld"))

	tests := []struct {
		name string
		from int
		dir  Direction
		n    int
		want int
		ok   bool
	}{
		{"left", 3, Left, 2, 1, true},
		{"right", 3, Right, 3, 6, true},
		{"right past end", 13, Right, 2, 0, false},
		{"down keeps column", 1, Down, 1, 7, true},
		{"down clamps column", 4, Down, 1, 8, true},
		{"down two", 4, Down, 2, 13, true},
		{"up", 13, Up, 2, 4, true},
		{"up past first line", 2, Up, 1, 0, false},
		{"down past last line", 10, Down, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.PositionInDirection(tt.from, tt.dir, tt.n)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestCompareAndOffset(t *testing.T) {
	e := New(WithContent("hello"))

	if e.Compare(1, 3) >= 0 || e.Compare(3, 1) <= 0 || e.Compare(2, 2) != 0 {
		t.Error("unexpected ordering")
	}
	if e.OffsetBetween(4, 1) != -3 {
		t.Errorf("expected -3, got %d", e.OffsetBetween(4, 1))
	}
}

func TestPositionWithin(t *testing.T) {
	e := New(WithContent("hello"))
	r := Range{Start: 4, End: 1}

	if got := e.PositionWithin(r, Left); got != 1 {
		t.Errorf("left: expected 1, got %d", got)
	}
	if got := e.PositionWithin(r, Up); got != 1 {
		t.Errorf("up: expected 1, got %d", got)
	}
	if got := e.PositionWithin(r, Right); got != 4 {
		t.Errorf("right: expected 4, got %d", got)
	}
}

func TestCharacterRangeByExtending(t *testing.T) {
	e := New(WithContent("hello"))

	if r := e.CharacterRangeByExtending(2, Left); r != (Range{Start: 0, End: 2}) {
		t.Errorf("expected [0:2), got %s", r)
	}
	if r := e.CharacterRangeByExtending(2, Down); r != (Range{Start: 2, End: 5}) {
		t.Errorf("expected [2:5), got %s", r)
	}
}

func TestWritingDirection(t *testing.T) {
	e := New(WithContent("hello"))
	e.SetBaseWritingDirection(RightToLeft, Range{Start: 0, End: 5})
	if d := e.BaseWritingDirection(2); d != Natural {
		t.Errorf("expected natural direction, got %s", d)
	}
}

// ============================================================================
// Geometry
// ============================================================================

func TestCaretRectSecondLine(t *testing.T) {
	e := New(WithContent("ab\ncd"))
	p := e.Metrics()
	lh := p.LineHeight(e.Style())

	r := e.CaretRect(4)
	if want := p.Measure("c", e.Style()).Width; r.X != want {
		t.Errorf("expected x = width(\"c\") = %v, got %v", want, r.X)
	}
	if r.Y != lh {
		t.Errorf("expected y on line 1 (%v), got %v", lh, r.Y)
	}
	if r.Height != lh {
		t.Errorf("expected height %v, got %v", lh, r.Height)
	}
}

func TestCaretRectCells(t *testing.T) {
	e := cells("ab\n日本")

	want := Rect{X: 20, Y: 20, Width: DefaultCaretWidth, Height: 20}
	if got := e.CaretRect(4); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestCaretAgreesWithSelection(t *testing.T) {
	e := cells("hello\n🇫🇷 wide 日本\n")

	for o := 0; o <= e.Len(); o++ {
		rects, err := e.SelectionRects(Range{Start: o, End: o})
		if err != nil {
			t.Fatalf("selection rects at %d: %v", o, err)
		}
		if len(rects) != 1 {
			t.Fatalf("expected one rect at %d, got %d", o, len(rects))
		}
		caret := e.CaretRect(o)
		if rects[0].X != caret.X || rects[0].Y != caret.Y {
			t.Errorf("offset %d: selection at (%v,%v), caret at (%v,%v)", o, rects[0].X, rects[0].Y, caret.X, caret.Y)
		}
	}
}

func TestSelectionRectsMultiline(t *testing.T) {
	e := cells("abc\n\ndef")

	got, err := e.SelectionRects(Range{Start: 1, End: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []SelectionRect{
		{Rect: Rect{X: 10, Y: 0, Width: 20, Height: 20}, ContainsStart: true, WritingDirection: layout.LeftToRight},
		{Rect: Rect{X: 0, Y: 40, Width: 20, Height: 20}, ContainsEnd: true, WritingDirection: layout.LeftToRight},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SelectionRects mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.SelectionRects(Range{Start: 3, End: 2}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestFirstRect(t *testing.T) {
	e := cells("abc\ndef")

	got, err := e.FirstRect(Range{Start: 1, End: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := (Rect{X: 10, Y: 0, Width: 20, Height: 20}); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestClosestOffset(t *testing.T) {
	e := cells("abc\nde")

	tests := []struct {
		p    Location
		want int
	}{
		{Location{X: -5, Y: 5}, 0},
		{Location{X: 4, Y: 5}, 0},
		{Location{X: 6, Y: 5}, 1},
		{Location{X: 25, Y: 5}, 2},
		{Location{X: 30, Y: 5}, 3},
		{Location{X: 90, Y: 5}, 3},
		{Location{X: 11, Y: 25}, 5},
		{Location{X: 11, Y: 500}, 5},
	}
	for _, tt := range tests {
		if got := e.ClosestOffset(tt.p); got != tt.want {
			t.Errorf("ClosestOffset(%v,%v): expected %d, got %d", tt.p.X, tt.p.Y, tt.want, got)
		}
	}
}

func TestClosestOffsetMonotonic(t *testing.T) {
	e := New(WithContent("Sphinx of 🇫🇷 black quartz."))

	prev := -1
	for x := -10.0; x < 300; x += 0.5 {
		o := e.ClosestOffset(Location{X: x, Y: 1})
		if o < prev {
			t.Fatalf("offset decreased at x=%v: %d after %d", x, o, prev)
		}
		prev = o
	}
}

func TestClosestOffsetOverflowPolicy(t *testing.T) {
	tests := []struct {
		policy layout.OverflowPolicy
		want   int
	}{
		{layout.OverflowLineEnd, 6},
		{layout.OverflowLineStart, 4},
		{layout.OverflowDocumentStart, 0},
	}
	for _, tt := range tests {
		e := cells("abc\nde", WithOverflowPolicy(tt.policy))
		if got := e.ClosestOffset(Location{X: 500, Y: 25}); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.policy, tt.want, got)
		}
	}
}

func TestClosestOffsetWithin(t *testing.T) {
	e := cells("abcdef")

	got, err := e.ClosestOffsetWithin(Location{X: 55, Y: 0}, Range{Start: 1, End: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Errorf("expected clamp to 3, got %d", got)
	}
}

func TestCharacterRangeAt(t *testing.T) {
	e := cells("abc")

	if r := e.CharacterRangeAt(Location{X: 12, Y: 0}); r != (Range{Start: 1, End: 2}) {
		t.Errorf("expected [1:2), got %s", r)
	}
	if r := e.CharacterRangeAt(Location{X: 80, Y: 0}); r != (Range{Start: 3, End: 3}) {
		t.Errorf("expected empty range at end, got %s", r)
	}
}

func TestIntrinsicSize(t *testing.T) {
	e := cells("abc\nhello\n")

	if got, want := e.IntrinsicSize(), (Size{Width: 50, Height: 60}); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	mustSelect(t, e, 0, 0)
	_ = e.InsertText("0123456789")
	if got := e.IntrinsicSize().Width; got != 130 {
		t.Errorf("size should follow edits, expected width 130, got %v", got)
	}
}

func TestGeometryFollowsEdits(t *testing.T) {
	e := cells("abc")
	before := e.CaretRect(3)

	mustSelect(t, e, 0, 0)
	_ = e.InsertText("日")
	after := e.CaretRect(4)
	if after.X != before.X+20 {
		t.Errorf("expected caret to move by one wide cell, got %v -> %v", before.X, after.X)
	}
}

// ============================================================================
// Style
// ============================================================================

func TestSetStyle(t *testing.T) {
	rec := &recorder{}
	e := New(WithContent("abc"), WithInvalidationHandler(rec.handle))
	small := e.IntrinsicSize()

	s := e.Style().WithFont(metrics.Font{Family: "basic", Size: 26})
	e.SetStyle(s)
	if e.Style() != s || e.MarkedTextStyle() != s {
		t.Error("style not applied")
	}
	big := e.IntrinsicSize()
	if big.Width <= small.Width || big.Height <= small.Height {
		t.Errorf("larger font should grow the size: %s -> %s", small, big)
	}

	e.SetStyle(s)
	if diff := cmp.Diff([]InvalidationKind{InvalidateStyle}, rec.kinds()); diff != "" {
		t.Errorf("invalidations mismatch (-want +got):\n%s", diff)
	}
}

func TestSetMetrics(t *testing.T) {
	e := New(WithContent("abc"))
	e.SetMetrics(metrics.NewCellProvider(10, 20))

	if got := e.CaretRect(3).X; got != 30 {
		t.Errorf("expected caret at 30, got %v", got)
	}
	e.SetMetrics(nil)
	if e.Metrics() == nil {
		t.Error("nil provider should be ignored")
	}
}

// ============================================================================
// Notifications
// ============================================================================

func TestInvalidations(t *testing.T) {
	rec := &recorder{}
	e := New(WithContent("hello\nworld"), WithInvalidationHandler(rec.handle))

	mustSelect(t, e, 8, 8)
	_ = e.InsertText("XY")
	_ = e.Undo()
	e.ClearSelection()

	want := []InvalidationKind{InvalidateSelection, InvalidateContent, InvalidateContent, InvalidateSelection}
	if diff := cmp.Diff(want, rec.kinds()); diff != "" {
		t.Fatalf("invalidations mismatch (-want +got):\n%s", diff)
	}
	if r := rec.got[1].Range; r != (Range{Start: 8, End: 10}) {
		t.Errorf("insert should touch [8:10), got %s", r)
	}
	if rec.got[1].Revision == rec.got[0].Revision {
		t.Error("content invalidation should carry the new revision")
	}
	if r := rec.got[2].Range; r != (Range{Start: 8, End: 8}) {
		t.Errorf("undo should touch [8:8), got %s", r)
	}
}

func TestNoInvalidationForSameSelection(t *testing.T) {
	rec := &recorder{}
	e := New(WithContent("abc"), WithInvalidationHandler(rec.handle))

	mustSelect(t, e, 0, 0)
	if len(rec.got) != 0 {
		t.Errorf("unchanged selection should not notify, got %v", rec.got)
	}
}

// ============================================================================
// Marked Text
// ============================================================================

type markedStub struct {
	text     string
	selected Range
	marked   bool
}

func (m *markedStub) MarkedRange() (Range, bool) {
	return Range{End: len(m.text)}, m.marked
}

func (m *markedStub) SetMarkedText(text string, selected Range) {
	m.text, m.selected, m.marked = text, selected, true
}

func (m *markedStub) Unmark() {
	m.marked = false
}

func TestMarkedTextDefault(t *testing.T) {
	e := New(WithContent("abc"))
	e.SetMarkedText("か", Range{Start: 0, End: 1})
	if _, ok := e.MarkedRange(); ok {
		t.Error("default handler should report no marked text")
	}
	e.UnmarkText()
	if e.Text() != "abc" {
		t.Error("marked text should not touch the buffer")
	}
}

func TestMarkedTextForwarded(t *testing.T) {
	m := &markedStub{}
	e := New(WithMarkedText(m))

	e.SetMarkedText("かな", Range{Start: 1, End: 2})
	if r, ok := e.MarkedRange(); !ok || r != (Range{Start: 0, End: 6}) {
		t.Errorf("expected forwarded marked range, got %s %v", r, ok)
	}
	if m.selected != (Range{Start: 1, End: 2}) {
		t.Errorf("selected range not forwarded, got %s", m.selected)
	}
	e.UnmarkText()
	if m.marked {
		t.Error("unmark not forwarded")
	}
}

// ============================================================================
// Logging
// ============================================================================

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := New(WithContent("abc"), WithLogger(logging.NewWithCore(core, logging.LevelDebug)))

	_ = e.InsertText("x")
	_ = e.Replace(Range{Start: 2, End: 1}, "y")

	if n := logs.FilterMessageSnippet("rejected").Len(); n != 1 {
		t.Errorf("expected one rejection log, got %d", n)
	}
	entries := logs.FilterField(zap.String("engine", e.ID().String())).All()
	if len(entries) != 2 {
		t.Errorf("expected 2 entries tagged with the engine id, got %d", len(entries))
	}
	if e.Logger() == nil {
		t.Error("logger should not be nil")
	}
}
