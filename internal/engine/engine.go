package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dshills/caret/internal/engine/buffer"
	"github.com/dshills/caret/internal/engine/cursor"
	"github.com/dshills/caret/internal/engine/history"
	"github.com/dshills/caret/internal/engine/lines"
	"github.com/dshills/caret/internal/layout"
	"github.com/dshills/caret/internal/logging"
	"github.com/dshills/caret/internal/metrics"
)

// Re-export commonly used types for convenience.
type (
	// Offset is a character position in the buffer.
	Offset = buffer.Offset

	// Range is a half-open span of the buffer.
	Range = buffer.Range

	// Point represents a line/column position.
	Point = buffer.Point

	// RevisionID uniquely identifies a buffer revision.
	RevisionID = buffer.RevisionID

	// Selection is an anchored selection.
	Selection = cursor.Selection

	// Rect is a rectangle in layout coordinates.
	Rect = layout.Rect

	// Location is a point in layout coordinates.
	Location = layout.Point

	// SelectionRect is one line's share of a selection.
	SelectionRect = layout.SelectionRect

	// Size is a width and height in layout units.
	Size = metrics.Size

	// Style is the visual style used for all geometry.
	Style = metrics.Style
)

// Engine is the text input facade: it owns one buffer, its selection and
// undo history, and answers geometry queries about the laid-out text.
//
// Engine performs no internal synchronization. All calls must come from
// the goroutine that owns the engine, or be serialized by the host.
type Engine struct {
	id uuid.UUID

	// Core components
	buf     *buffer.Buffer
	sel     history.SelectionState
	history *history.History
	layout  *layout.Engine
	marked  MarkedText
	log     *logging.Logger

	// Derived state, dropped on mutation
	index     *lines.Index
	intrinsic *Size

	// Configuration
	style          Style
	provider       metrics.Provider
	caretWidth     float64
	overflow       layout.OverflowPolicy
	widthCacheSize int
	maxUndoEntries int
	nfc            bool
	readOnly       bool
	onInvalidate   InvalidationHandler

	// Initialization
	initContent string
}

// defaults returns an engine with default configuration applied.
func defaults(opts []Option) *Engine {
	e := &Engine{
		id:             uuid.New(),
		sel:            history.Active(cursor.NewCursorSelection(0)),
		marked:         NopMarkedText{},
		log:            logging.Nop(),
		style:          metrics.DefaultStyle(),
		caretWidth:     DefaultCaretWidth,
		overflow:       layout.OverflowLineEnd,
		widthCacheSize: DefaultWidthCacheSize,
		maxUndoEntries: DefaultMaxUndoEntries,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.provider == nil {
		e.provider = metrics.NewFaceProvider()
	}
	e.history = history.NewHistory(e.maxUndoEntries)
	e.layout = layout.New(e.provider,
		layout.WithCaretWidth(e.caretWidth),
		layout.WithOverflowPolicy(e.overflow),
		layout.WithWidthCacheSize(e.widthCacheSize),
	)
	e.log = e.log.WithComponent("engine").WithField("engine", e.id.String())
	return e
}

func (e *Engine) bufferOptions() []buffer.Option {
	if e.nfc {
		return []buffer.Option{buffer.WithNFC()}
	}
	return nil
}

// New creates a new Engine with the given options.
// The selection starts collapsed at the beginning of the document.
func New(opts ...Option) *Engine {
	e := defaults(opts)
	e.buf = buffer.NewBufferFromString(e.initContent, e.bufferOptions()...)
	e.initContent = ""
	return e
}

// NewFromReader creates an Engine whose content is read from r.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	e := defaults(opts)
	var err error
	e.buf, err = buffer.NewBufferFromReader(r, e.bufferOptions()...)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return e, nil
}

// ID returns the engine's unique identifier.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// ============================================================================
// Read Operations
// ============================================================================

// Text returns the full buffer content.
func (e *Engine) Text() string {
	return e.buf.Text()
}

// Len returns the document length in characters.
func (e *Engine) Len() int {
	return e.buf.Len()
}

// HasText reports whether the document is non-empty.
func (e *Engine) HasText() bool {
	return !e.buf.IsEmpty()
}

// TextIn returns the text covered by r.
func (e *Engine) TextIn(r Range) (string, error) {
	return e.buf.TextRange(r)
}

// Revision returns the current buffer revision.
func (e *Engine) Revision() RevisionID {
	return e.buf.RevisionID()
}

// Lines returns the line index of the current text.
// The index is built on first use and reused until the next mutation.
func (e *Engine) Lines() *lines.Index {
	if e.index == nil || e.index.Revision() != e.buf.RevisionID() {
		e.index = lines.NewIndex(e.buf.Snapshot())
	}
	return e.index
}

// PointAt converts an offset to line/column.
func (e *Engine) PointAt(o Offset) Point {
	return e.Lines().Point(o)
}

// OffsetAt converts line/column to an offset, clamping to the document.
func (e *Engine) OffsetAt(p Point) Offset {
	return e.Lines().Offset(p)
}

// ============================================================================
// Write Operations
// ============================================================================

// Replace replaces the text in r. The selection, if any, is carried
// through the edit.
func (e *Engine) Replace(r Range, text string) error {
	return e.execute(history.NewReplaceCommand(r, text))
}

// InsertText replaces the selection with text and collapses the selection
// after the inserted text.
func (e *Engine) InsertText(text string) error {
	return e.execute(history.NewInsertCommand(text))
}

// DeleteBackward deletes the selection, or the character before an empty
// selection. At the start of the document it does nothing.
func (e *Engine) DeleteBackward() error {
	return e.execute(history.NewDeleteBackwardCommand())
}

// execute runs cmd through the history and publishes the result.
// The engine is unchanged when an error is returned.
func (e *Engine) execute(cmd history.Command) error {
	if e.readOnly {
		return e.reject(cmd.Description(), ErrReadOnly)
	}
	t := history.NewTarget(e.buf, e.sel)
	if err := e.history.Execute(cmd, t); err != nil {
		return e.reject(cmd.Description(), err)
	}
	e.commit(t, cmd.Description())
	return nil
}

// reject logs a refused operation and returns err.
func (e *Engine) reject(op string, err error) error {
	e.log.Warn("%s rejected: %v", op, err)
	return err
}

// commit adopts the target's selection and invalidates derived state for
// every edit applied through it.
func (e *Engine) commit(t *history.Target, op string) {
	selChanged := e.sel != t.Selection
	e.sel = t.Selection

	applied := t.Applied()
	if len(applied) == 0 {
		if selChanged {
			e.notifySelection()
		}
		return
	}

	touched := applied[len(applied)-1].NewRange
	first := touched.Start
	for _, res := range applied {
		first = min(first, res.NewRange.Start)
		touched = touched.Union(res.NewRange)
	}
	touched = touched.ClampTo(e.buf.Len())

	e.index = nil
	e.intrinsic = nil
	e.layout.Widths().InvalidateFrom(e.lineOf(first))

	e.log.Debug("%s: %d edit(s), touched %s, revision %d", op, len(applied), touched, e.buf.RevisionID())
	e.notify(Invalidation{Kind: InvalidateContent, Range: touched, Revision: e.buf.RevisionID()})
}

// lineOf returns the line holding offset without building a line index.
func (e *Engine) lineOf(o Offset) int {
	return strings.Count(e.buf.Text()[:e.buf.ByteOffset(o)], "\n")
}

func (e *Engine) notify(inv Invalidation) {
	if e.onInvalidate != nil {
		e.onInvalidate(inv)
	}
}

func (e *Engine) notifySelection() {
	r := Range{}
	if e.sel.Active {
		r = e.sel.Selection.Range()
	}
	e.notify(Invalidation{Kind: InvalidateSelection, Range: r, Revision: e.buf.RevisionID()})
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo undoes the last edit, restoring text and selection.
func (e *Engine) Undo() error {
	if e.readOnly {
		return e.reject("undo", ErrReadOnly)
	}
	t := history.NewTarget(e.buf, e.sel)
	if err := e.history.Undo(t); err != nil {
		return e.reject("undo", err)
	}
	e.commit(t, "undo")
	return nil
}

// Redo redoes the last undone edit.
func (e *Engine) Redo() error {
	if e.readOnly {
		return e.reject("redo", ErrReadOnly)
	}
	t := history.NewTarget(e.buf, e.sel)
	if err := e.history.Redo(t); err != nil {
		return e.reject("redo", err)
	}
	e.commit(t, "redo")
	return nil
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of available undo operations.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of available redo operations.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// UndoName describes the edit Undo would revert.
func (e *Engine) UndoName() (string, bool) {
	info, ok := e.history.PeekUndo()
	return info.Description, ok
}

// RedoName describes the edit Redo would re-apply.
func (e *Engine) RedoName() (string, bool) {
	info, ok := e.history.PeekRedo()
	return info.Description, ok
}

// MaxUndoEntries returns the undo stack limit.
func (e *Engine) MaxUndoEntries() int {
	return e.history.MaxEntries()
}

// SetMaxUndoEntries changes the undo stack limit, dropping the oldest
// entries beyond it. n <= 0 restores the default.
func (e *Engine) SetMaxUndoEntries(n int) {
	e.history.SetMaxEntries(n)
}

// Transaction runs fn so that all edits it makes undo as one unit.
// If fn fails, its edits are rolled back and fn's error is returned.
// Inside an open undo group fn simply runs as part of that group.
func (e *Engine) Transaction(name string, fn func() error) error {
	if e.history.IsGrouping() {
		return fn()
	}

	e.history.BeginGroup(name)
	if err := fn(); err != nil {
		t := history.NewTarget(e.buf, e.sel)
		if rerr := e.history.RollbackGroup(t); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("rollback %s: %w", name, rerr))
		}
		e.commit(t, "rollback "+name)
		return err
	}
	e.history.EndGroup()
	return nil
}

// BeginUndoGroup starts grouping edits into one undo unit.
func (e *Engine) BeginUndoGroup(name string) {
	e.history.BeginGroup(name)
}

// EndUndoGroup ends the current undo group.
func (e *Engine) EndUndoGroup() {
	e.history.EndGroup()
}

// ClearHistory removes all undo/redo history.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// ============================================================================
// Selection
// ============================================================================

// SelectedRange returns the selection as an ordered range.
// The second result is false when there is no selection.
func (e *Engine) SelectedRange() (Range, bool) {
	if !e.sel.Active {
		return Range{}, false
	}
	return e.sel.Selection.Range(), true
}

// Selection returns the anchored selection.
func (e *Engine) Selection() (Selection, bool) {
	return e.sel.Selection, e.sel.Active
}

// SetSelectedRange selects r. The range must be ordered and inside the
// document.
func (e *Engine) SetSelectedRange(r Range) error {
	if err := e.checkRange(r); err != nil {
		return e.reject("select", err)
	}
	return e.SetSelection(cursor.NewRangeSelection(r))
}

// SetSelection installs an anchored selection. Anchor and head may be in
// either order.
func (e *Engine) SetSelection(sel Selection) error {
	if err := e.checkRange(sel.Range()); err != nil {
		return e.reject("select", err)
	}
	next := history.Active(sel)
	if next == e.sel {
		return nil
	}
	e.sel = next
	e.notifySelection()
	return nil
}

// ClearSelection removes the selection. Edits that need one fail with
// ErrNoActiveSelection until a new one is set.
func (e *Engine) ClearSelection() {
	if !e.sel.Active {
		return
	}
	e.sel = history.None()
	e.notifySelection()
}

// checkRange validates r against the document.
func (e *Engine) checkRange(r Range) error {
	if r.Start > r.End {
		return fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	if !r.Within(e.Len()) {
		return fmt.Errorf("%w: %s exceeds [0:%d]", ErrOffsetOutOfBounds, r, e.Len())
	}
	return nil
}

// ============================================================================
// Positions
// ============================================================================

// BeginningOfDocument returns the first offset.
func (e *Engine) BeginningOfDocument() Offset {
	return 0
}

// EndOfDocument returns the offset after the last character.
func (e *Engine) EndOfDocument() Offset {
	return e.Len()
}

// TextRange returns the range between two positions, in the given order.
func (e *Engine) TextRange(from, to Offset) Range {
	return buffer.NewRange(from, to)
}

// Position moves from by delta characters. The second result is false when
// the result would leave the document.
func (e *Engine) Position(from Offset, delta int) (Offset, bool) {
	if from < 0 || from > e.Len() {
		return 0, false
	}
	return buffer.Advance(from, delta, e.Len())
}

// PositionInDirection moves from by n steps. Left and right move by
// characters; up and down move by lines, keeping the column where the
// target line is long enough.
func (e *Engine) PositionInDirection(from Offset, dir Direction, n int) (Offset, bool) {
	switch dir {
	case Left:
		return e.Position(from, -n)
	case Right:
		return e.Position(from, n)
	}

	if from < 0 || from > e.Len() {
		return 0, false
	}
	idx := e.Lines()
	p := idx.Point(from)
	if dir == Up {
		p.Line -= n
	} else {
		p.Line += n
	}
	if p.Line < 0 || p.Line >= idx.Count() {
		return 0, false
	}
	return idx.Offset(p), true
}

// Compare orders two positions.
func (e *Engine) Compare(a, b Offset) int {
	return buffer.Compare(a, b)
}

// OffsetBetween returns the signed distance from one position to another.
func (e *Engine) OffsetBetween(from, to Offset) int {
	return to - from
}

// PositionWithin returns the farthest position of r in direction dir.
func (e *Engine) PositionWithin(r Range, dir Direction) Offset {
	r = r.Normalize()
	if dir.Backward() {
		return r.Start
	}
	return r.End
}

// CharacterRangeByExtending extends pos to the document start (left, up)
// or end (right, down).
func (e *Engine) CharacterRangeByExtending(pos Offset, dir Direction) Range {
	pos = buffer.Clamp(pos, e.Len())
	if dir.Backward() {
		return buffer.NewRange(0, pos)
	}
	return buffer.NewRange(pos, e.Len())
}

// BaseWritingDirection returns the paragraph direction at pos.
// Bidirectional layout is not supported, so it is always Natural.
func (e *Engine) BaseWritingDirection(Offset) WritingDirection {
	return Natural
}

// SetBaseWritingDirection is accepted and ignored.
func (e *Engine) SetBaseWritingDirection(WritingDirection, Range) {}

// ============================================================================
// Geometry
// ============================================================================

// CaretRect returns the caret rectangle at pos.
func (e *Engine) CaretRect(pos Offset) Rect {
	return e.layout.CaretRect(e.Lines(), pos, e.style)
}

// SelectionRects returns the rectangles covering r, one per line.
func (e *Engine) SelectionRects(r Range) ([]SelectionRect, error) {
	return e.layout.SelectionRects(e.Lines(), r, e.style)
}

// FirstRect returns the rectangle covering r on its first line.
func (e *Engine) FirstRect(r Range) (Rect, error) {
	return e.layout.FirstRect(e.Lines(), r, e.style)
}

// ClosestOffset returns the offset nearest to p.
func (e *Engine) ClosestOffset(p Location) Offset {
	return e.layout.ClosestOffset(e.Lines(), p, e.style)
}

// ClosestOffsetWithin returns the offset nearest to p, clamped into r.
func (e *Engine) ClosestOffsetWithin(p Location, r Range) (Offset, error) {
	return e.layout.ClosestOffsetWithin(e.Lines(), p, r, e.style)
}

// CharacterRangeAt returns the character under p.
func (e *Engine) CharacterRangeAt(p Location) Range {
	return e.layout.CharacterRangeAt(e.Lines(), p, e.style)
}

// IntrinsicSize returns the size of the laid-out text. The value is cached
// until the next mutation or style change.
func (e *Engine) IntrinsicSize() Size {
	if e.intrinsic == nil {
		s := e.layout.IntrinsicSize(e.Lines(), e.style)
		e.intrinsic = &s
	}
	return *e.intrinsic
}

// WidthCacheStats returns statistics of the per-line width cache.
func (e *Engine) WidthCacheStats() layout.CacheStats {
	return e.layout.Widths().Stats()
}

// ============================================================================
// Style
// ============================================================================

// Style returns the current style.
func (e *Engine) Style() Style {
	return e.style
}

// SetStyle replaces the style. All geometry is recomputed.
func (e *Engine) SetStyle(s Style) {
	if s == e.style {
		return
	}
	e.style = s
	e.intrinsic = nil
	e.log.Debug("style changed to %s", s)
	e.notify(Invalidation{Kind: InvalidateStyle, Revision: e.buf.RevisionID()})
}

// SetMetrics replaces the metrics provider. All geometry is recomputed.
func (e *Engine) SetMetrics(p metrics.Provider) {
	if p == nil {
		return
	}
	e.provider = p
	e.layout.SetProvider(p)
	e.intrinsic = nil
	e.notify(Invalidation{Kind: InvalidateStyle, Revision: e.buf.RevisionID()})
}

// Metrics returns the metrics provider.
func (e *Engine) Metrics() metrics.Provider {
	return e.provider
}

// MarkedTextStyle returns the style used for marked text.
func (e *Engine) MarkedTextStyle() Style {
	return e.style
}

// ============================================================================
// Marked Text
// ============================================================================

// MarkedRange returns the range of provisional input-method text.
func (e *Engine) MarkedRange() (Range, bool) {
	return e.marked.MarkedRange()
}

// SetMarkedText forwards provisional text to the marked-text handler.
func (e *Engine) SetMarkedText(text string, selected Range) {
	e.marked.SetMarkedText(text, selected)
}

// UnmarkText commits provisional text.
func (e *Engine) UnmarkText() {
	e.marked.Unmark()
}

// ============================================================================
// Configuration
// ============================================================================

// IsReadOnly reports whether edits are refused.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}

// SetReadOnly toggles read-only mode.
func (e *Engine) SetReadOnly(ro bool) {
	e.readOnly = ro
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *logging.Logger {
	return e.log
}
