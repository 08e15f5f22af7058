package host

import (
	"context"
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/caret/internal/config"
	"github.com/dshills/caret/internal/engine"
	"github.com/dshills/caret/internal/engine/cursor"
	"github.com/dshills/caret/internal/logging"
)

// View draws one engine onto a terminal and feeds it input.
//
// Layout units are converted to cells with the engine's own metrics, so
// any provider works; a cell provider with 1x1 cells maps one to one.
// All methods must be called from the event loop goroutine.
type View struct {
	term *Terminal
	eng  *engine.Engine
	log  *logging.Logger

	// Cell size in layout units
	cellW, cellH float64

	// First visible line
	top int

	// Mouse drag state
	dragging bool
	anchor   engine.Offset

	// State
	status      string
	needsRedraw bool
}

// NewView creates a view of eng on term.
func NewView(term *Terminal, eng *engine.Engine, log *logging.Logger) *View {
	if log == nil {
		log = logging.Nop()
	}
	v := &View{
		term:        term,
		eng:         eng,
		log:         log.WithComponent("view"),
		needsRedraw: true,
	}
	v.measureCell()
	return v
}

// measureCell derives the cell size from the engine's metrics.
func (v *View) measureCell() {
	style := v.eng.Style()
	v.cellH = v.eng.Metrics().LineHeight(style)
	v.cellW = v.eng.Metrics().Measure("m", style).Width
	if v.cellH <= 0 {
		v.cellH = 1
	}
	if v.cellW <= 0 {
		v.cellW = 1
	}
}

// Engine returns the engine shown by the view.
func (v *View) Engine() *engine.Engine {
	return v.eng
}

// Invalidate marks the view for redraw. Register it with
// engine.WithInvalidationHandler.
func (v *View) Invalidate(inv engine.Invalidation) {
	v.log.Debug("invalidate %s", inv)
	v.needsRedraw = true
}

// NeedsRedraw reports whether the screen is stale.
func (v *View) NeedsRedraw() bool {
	return v.needsRedraw
}

// Status returns the last status message.
func (v *View) Status() string {
	return v.status
}

// ApplyConfig applies style and metrics from a reloaded configuration.
func (v *View) ApplyConfig(cfg *config.Config) error {
	style, err := cfg.Style.Resolve()
	if err != nil {
		return err
	}
	provider, err := cfg.Metrics.Provider()
	if err != nil {
		return err
	}
	v.eng.SetMetrics(provider)
	v.eng.SetStyle(style)
	v.eng.SetReadOnly(cfg.Editor.ReadOnly)
	v.eng.SetMaxUndoEntries(cfg.Editor.MaxUndo)
	v.measureCell()
	v.needsRedraw = true
	return nil
}

// ============================================================================
// Coordinates
// ============================================================================

// textRows returns the number of rows available for text.
func (v *View) textRows() int {
	_, h := v.term.Size()
	return max(h-1, 1)
}

// cellOf converts a layout point to a screen cell.
func (v *View) cellOf(x, y float64) (int, int) {
	return int(math.Floor(x/v.cellW + 1e-9)), int(math.Floor(y/v.cellH+1e-9)) - v.top
}

// locationOf converts a screen cell to a layout point at the cell's
// top-left corner.
func (v *View) locationOf(col, row int) engine.Location {
	return engine.Location{
		X: float64(col) * v.cellW,
		Y: float64(row+v.top) * v.cellH,
	}
}

// scrollToCaret keeps the selection head visible.
func (v *View) scrollToCaret() {
	sel, ok := v.eng.Selection()
	if !ok {
		return
	}
	line := v.eng.PointAt(sel.Head).Line
	rows := v.textRows()
	switch {
	case line < v.top:
		v.top = line
	case line >= v.top+rows:
		v.top = line - rows + 1
	}
}

// ============================================================================
// Drawing
// ============================================================================

// styles returns the text style and the selection background.
func (v *View) styles() (tcell.Style, tcell.Color) {
	s := v.eng.Style()
	return tcell.StyleDefault.Foreground(Color(s.Foreground)), Color(s.Background)
}

// Draw renders the visible lines, the selection, the caret and the status
// line.
func (v *View) Draw() {
	v.term.Clear()
	text, selected := v.styles()
	rows := v.textRows()
	idx := v.eng.Lines()

	for line := range idx.Lines() {
		if line.Index < v.top {
			continue
		}
		if line.Index >= v.top+rows {
			break
		}
		for i, cluster := range idx.Chars(line.Index) {
			r := v.eng.CaretRect(line.Start + i)
			col, row := v.cellOf(r.X, r.Y)
			v.term.SetCell(col, row, cluster, text)
		}
	}

	v.drawSelection(selected)
	v.drawCaret()
	v.drawStatus(text)

	v.term.Show()
	v.needsRedraw = false
}

func (v *View) drawSelection(bg tcell.Color) {
	r, ok := v.eng.SelectedRange()
	if !ok || r.IsEmpty() {
		return
	}
	rects, err := v.eng.SelectionRects(r)
	if err != nil {
		v.log.Warn("selection rects: %v", err)
		return
	}
	for _, sr := range rects {
		col, row := v.cellOf(sr.X, sr.Y)
		width := int(math.Ceil(sr.Width/v.cellW - 1e-9))
		v.term.Restyle(col, row, width, 1, func(s tcell.Style) tcell.Style {
			return s.Background(bg)
		})
	}
}

func (v *View) drawCaret() {
	sel, ok := v.eng.Selection()
	if !ok {
		v.term.HideCursor()
		return
	}
	r := v.eng.CaretRect(sel.Head)
	col, row := v.cellOf(r.X, r.Y)
	if row < 0 || row >= v.textRows() {
		v.term.HideCursor()
		return
	}
	v.term.ShowCursor(col, row)
}

func (v *View) drawStatus(style tcell.Style) {
	w, h := v.term.Size()
	status := v.status
	if sel, ok := v.eng.Selection(); ok {
		p := v.eng.PointAt(sel.Head)
		status = fmt.Sprintf("%d:%d  %d chars  %s", p.Line+1, p.Column+1, v.eng.Len(), v.status)
		if n := sel.Len(); n > 0 {
			status = fmt.Sprintf("%d:%d  %d selected  %s", p.Line+1, p.Column+1, n, v.status)
		}
	}
	bar := style.Reverse(true)
	v.term.Fill(0, h-1, w, 1, ' ', bar)
	col := 0
	for _, r := range status {
		if col >= w {
			break
		}
		v.term.SetCell(col, h-1, string(r), bar)
		col++
	}
}

// ============================================================================
// Input
// ============================================================================

// HandleEvent applies one terminal event. It returns false when the view
// should close.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(e)
	case *tcell.EventMouse:
		v.handleMouse(e)
	case *tcell.EventResize:
		v.term.Sync()
		v.needsRedraw = true
	case *tcell.EventInterrupt:
		if cfg, ok := e.Data().(*config.Config); ok {
			if err := v.ApplyConfig(cfg); err != nil {
				v.report("config", err)
			} else {
				v.status = "config reloaded"
			}
		}
	}
	return true
}

func (v *View) handleKey(e *tcell.EventKey) bool {
	shift := e.Modifiers()&tcell.ModShift != 0

	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlQ:
		return false
	case tcell.KeyRune:
		v.report("insert", v.eng.InsertText(string(e.Rune())))
	case tcell.KeyEnter:
		v.report("insert", v.eng.InsertText("\n"))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		v.report("delete", v.eng.DeleteBackward())
	case tcell.KeyDelete:
		v.deleteForward()
	case tcell.KeyLeft:
		v.move(engine.Left, shift)
	case tcell.KeyRight:
		v.move(engine.Right, shift)
	case tcell.KeyUp:
		v.move(engine.Up, shift)
	case tcell.KeyDown:
		v.move(engine.Down, shift)
	case tcell.KeyHome:
		v.moveLine(false, shift)
	case tcell.KeyEnd:
		v.moveLine(true, shift)
	case tcell.KeyCtrlA:
		v.report("select", v.eng.SetSelectedRange(engine.Range{Start: 0, End: v.eng.Len()}))
	case tcell.KeyCtrlZ:
		v.undoRedo(false)
	case tcell.KeyCtrlY:
		v.undoRedo(true)
	default:
		return true
	}
	v.scrollToCaret()
	return true
}

// report records an error in the status line.
func (v *View) report(op string, err error) {
	if err == nil {
		if v.status != "" {
			v.status = ""
			v.needsRedraw = true
		}
		return
	}
	v.status = fmt.Sprintf("%s: %v", op, err)
	v.needsRedraw = true
	v.term.Beep()
}

// undoRedo reverts or re-applies the last edit and names it in the
// status line.
func (v *View) undoRedo(redo bool) {
	op, name, apply := "undo", v.eng.UndoName, v.eng.Undo
	if redo {
		op, name, apply = "redo", v.eng.RedoName, v.eng.Redo
	}
	what, _ := name()
	if err := apply(); err != nil {
		v.report(op, err)
		return
	}
	v.status = op + ": " + what
	v.needsRedraw = true
}

// selection returns the current selection, or a caret at 0.
func (v *View) selection() cursor.Selection {
	if sel, ok := v.eng.Selection(); ok {
		return sel
	}
	return cursor.NewCursorSelection(0)
}

// move moves or extends the selection head one step in dir.
func (v *View) move(dir engine.Direction, extend bool) {
	sel := v.selection()

	if !extend && !sel.IsEmpty() && !dir.Vertical() {
		v.report("move", v.eng.SetSelection(cursor.NewCursorSelection(v.eng.PositionWithin(sel.Range(), dir))))
		return
	}

	head, ok := v.eng.PositionInDirection(sel.Head, dir, 1)
	if !ok {
		// Moves off the document stop at its ends.
		head = v.eng.BeginningOfDocument()
		if !dir.Backward() {
			head = v.eng.EndOfDocument()
		}
	}
	v.setHead(sel, head, extend)
}

// moveLine moves to the start or end of the caret's line.
func (v *View) moveLine(end, extend bool) {
	sel := v.selection()
	p := v.eng.PointAt(sel.Head)
	p.Column = 0
	if end {
		p.Column = math.MaxInt
	}
	v.setHead(sel, v.eng.OffsetAt(p), extend)
}

func (v *View) setHead(sel cursor.Selection, head engine.Offset, extend bool) {
	next := cursor.NewCursorSelection(head)
	if extend {
		next = sel.Extend(head)
	}
	v.report("move", v.eng.SetSelection(next))
}

// deleteForward deletes the selection or the character after the caret.
func (v *View) deleteForward() {
	sel := v.selection()
	if sel.IsEmpty() {
		next, ok := v.eng.Position(sel.Head, 1)
		if !ok {
			return
		}
		if err := v.eng.SetSelection(cursor.NewSelection(sel.Head, next)); err != nil {
			v.report("delete", err)
			return
		}
	}
	v.report("delete", v.eng.DeleteBackward())
}

func (v *View) handleMouse(e *tcell.EventMouse) {
	x, y := e.Position()
	if y >= v.textRows() {
		return
	}

	switch e.Buttons() {
	case tcell.Button1:
		o := v.eng.ClosestOffset(v.locationOf(x, y))
		if !v.dragging {
			v.dragging = true
			v.anchor = o
		}
		v.report("select", v.eng.SetSelection(cursor.NewSelection(v.anchor, o)))
	case tcell.WheelUp:
		v.top = max(v.top-1, 0)
		v.needsRedraw = true
	case tcell.WheelDown:
		v.top = min(v.top+1, max(v.eng.Lines().Count()-1, 0))
		v.needsRedraw = true
	case tcell.ButtonNone:
		v.dragging = false
	}
}

// ============================================================================
// Event Loop
// ============================================================================

// Run processes events until the user quits or ctx is cancelled.
func (v *View) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = v.term.PostEvent(tcell.NewEventInterrupt(ctx))
	})
	defer stop()

	v.scrollToCaret()
	v.Draw()
	for {
		ev := v.term.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !v.HandleEvent(ev) {
			return nil
		}
		if v.needsRedraw {
			v.Draw()
		} else {
			v.drawCaret()
			v.term.Show()
		}
	}
}

// Reload queues a configuration for the event loop. It is safe to call
// from any goroutine, including a config.Watcher callback.
func (v *View) Reload(cfg *config.Config) error {
	return v.term.PostEvent(tcell.NewEventInterrupt(cfg))
}
