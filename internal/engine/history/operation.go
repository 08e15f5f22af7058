package history

import (
	"time"

	"github.com/dshills/caret/internal/engine/buffer"
	"github.com/dshills/caret/internal/engine/cursor"
)

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// Selection is an alias for cursor.Selection for convenience.
type Selection = cursor.Selection

// SelectionState is a selection that may be absent.
type SelectionState struct {
	Selection Selection
	Active    bool
}

// Active returns a present selection.
func Active(sel Selection) SelectionState {
	return SelectionState{Selection: sel, Active: true}
}

// None returns an absent selection.
func None() SelectionState {
	return SelectionState{}
}

// Operation represents a single applied edit.
// It captures all information needed to undo or redo the edit.
type Operation struct {
	Result buffer.EditResult

	// Selection state for restore
	Before SelectionState
	After  SelectionState
}

// NewOperation creates an operation from an applied edit.
func NewOperation(result buffer.EditResult, before, after SelectionState) *Operation {
	return &Operation{
		Result: result,
		Before: before,
		After:  after,
	}
}

// Redo returns the edit that re-applies the operation.
func (op *Operation) Redo() buffer.Edit {
	return op.Result.Edit()
}

// Undo returns the edit that reverses the operation.
func (op *Operation) Undo() buffer.Edit {
	return op.Result.Inverse()
}

// OperationInfo provides read-only info about an undo entry.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the entry was recorded
}
