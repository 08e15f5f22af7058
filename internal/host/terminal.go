package host

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Terminal wraps a tcell screen.
//
// Drawing calls are serialized so that other goroutines may post events
// while the event loop draws.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a terminal on the controlling tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalWithScreen wraps an existing screen, such as a
// tcell.SimulationScreen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Init initializes the screen with mouse and bracketed paste enabled.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}

	// Enable mouse support by default
	t.screen.EnableMouse()

	// Enable bracketed paste
	t.screen.EnablePaste()

	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

// Size returns the screen size in cells.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// SetCell draws one grapheme cluster at (x, y).
func (t *Terminal) SetCell(x, y int, cluster string, style tcell.Style) {
	if cluster == "" {
		return
	}
	runes := []rune(cluster)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, runes[0], runes[1:], style)
}

// Cell returns the primary rune and style at (x, y).
func (t *Terminal) Cell(x, y int) (rune, tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mainc, _, style, _ := t.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return mainc, style
}

// Fill paints a rectangle of cells with r, clipped to the screen.
func (t *Terminal) Fill(x, y, width, height int, r rune, style tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sw, sh := t.screen.Size()
	for row := max(y, 0); row < y+height && row < sh; row++ {
		for col := max(x, 0); col < x+width && col < sw; col++ {
			t.screen.SetContent(col, row, r, nil, style)
		}
	}
}

// Restyle changes the style of existing cells without changing their
// content.
func (t *Terminal) Restyle(x, y, width, height int, fn func(tcell.Style) tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sw, sh := t.screen.Size()
	for row := max(y, 0); row < y+height && row < sh; row++ {
		for col := max(x, 0); col < x+width && col < sw; col++ {
			mainc, comb, style, _ := t.screen.GetContent(col, row) //nolint:staticcheck // GetContent is the correct API
			t.screen.SetContent(col, row, mainc, comb, fn(style))
		}
	}
}

// Clear clears the screen.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

// Show flushes pending changes to the terminal.
func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

// Sync redraws the whole terminal, used after resizes.
func (t *Terminal) Sync() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Sync()
}

// ShowCursor places the hardware cursor.
func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.ShowCursor(x, y)
}

// HideCursor hides the hardware cursor.
func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

// PollEvent blocks until the next event. It returns nil after Shutdown.
func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// PostEvent queues an event for PollEvent. It is safe to call from any
// goroutine.
func (t *Terminal) PostEvent(ev tcell.Event) error {
	return t.screen.PostEvent(ev)
}

// Beep rings the terminal bell.
func (t *Terminal) Beep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.screen.Beep() // best-effort; terminal may not support beep
}

// Color converts a colour to a true-colour terminal colour.
func Color(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
