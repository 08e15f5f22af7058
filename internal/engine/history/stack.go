package history

import (
	"errors"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 1000

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   Command
	timestamp time.Time
}

// History manages undo/redo state for a buffer.
//
// History is not safe for concurrent use; it belongs to the engine that
// owns the buffer.
type History struct {
	undoStack []*undoEntry
	redoStack []*undoEntry

	// Grouping state
	grouping  bool
	groupName string
	groupCmds []Command

	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// Execute runs a command and adds it to the undo stack.
// Commands that leave the buffer untouched are not recorded.
func (h *History) Execute(cmd Command, t *Target) error {
	n := len(t.applied)
	if err := cmd.Execute(t); err != nil {
		return err
	}
	if len(t.applied) == n {
		return nil
	}

	h.Push(cmd)
	return nil
}

// Push adds a command to the undo stack.
// Clears the redo stack.
func (h *History) Push(cmd Command) {
	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return
	}

	h.undoStack = append(h.undoStack, &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
	})
	h.redoStack = nil
	h.trim()
}

// trim removes the oldest entries beyond the limit.
func (h *History) trim() {
	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo undoes the last command.
func (h *History) Undo(t *Target) error {
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}

	entry := h.undoStack[len(h.undoStack)-1]
	if err := entry.command.Undo(t); err != nil {
		return err
	}

	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, entry)
	return nil
}

// Redo re-applies the last undone command as it was recorded, regardless
// of the selection t holds now.
func (h *History) Redo(t *Target) error {
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}

	entry := h.redoStack[len(h.redoStack)-1]
	if err := entry.command.Redo(t); err != nil {
		return err
	}

	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, entry)
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	return len(h.redoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupCmds = nil
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	return peek(h.undoStack)
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	return peek(h.redoStack)
}

func peek(stack []*undoEntry) (OperationInfo, bool) {
	if len(stack) == 0 {
		return OperationInfo{}, false
	}
	entry := stack[len(stack)-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(n int) {
	if n <= 0 {
		n = DefaultMaxEntries
	}
	h.maxEntries = n
	h.trim()
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	return h.maxEntries
}
