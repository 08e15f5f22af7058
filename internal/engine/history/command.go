package history

import (
	"errors"
	"fmt"

	"github.com/rivo/uniseg"

	"github.com/dshills/caret/internal/engine/buffer"
	"github.com/dshills/caret/internal/engine/cursor"
)

// ErrNoActiveSelection is returned by commands that edit at the selection
// when there is none.
var ErrNoActiveSelection = errors.New("no active selection")

// Target is the state commands operate on.
type Target struct {
	Buffer    *buffer.Buffer
	Selection SelectionState

	applied []buffer.EditResult
}

// NewTarget creates a target over buf with the given selection state.
func NewTarget(buf *buffer.Buffer, sel SelectionState) *Target {
	return &Target{Buffer: buf, Selection: sel}
}

// Apply applies an edit to the buffer and records its result.
func (t *Target) Apply(edit buffer.Edit) (buffer.EditResult, error) {
	result, err := t.Buffer.ApplyEdit(edit)
	if err != nil {
		return buffer.EditResult{}, err
	}
	t.applied = append(t.applied, result)
	return result, nil
}

// Applied returns the edits applied since the last Reset, in order.
func (t *Target) Applied() []buffer.EditResult {
	return t.applied
}

// Reset forgets the recorded edits.
func (t *Target) Reset() {
	t.applied = nil
}

// Command represents a composable edit action that can be executed and undone.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute(t *Target) error

	// Undo reverses the command and returns an error if it fails.
	Undo(t *Target) error

	// Redo re-applies the recorded effect of an undone command.
	Redo(t *Target) error

	// Description returns a human-readable description of the command.
	Description() string
}

// InsertCommand replaces the selection with text and collapses the
// selection after it.
type InsertCommand struct {
	Text      string
	operation *Operation
}

// NewInsertCommand creates a new insert command.
func NewInsertCommand(text string) *InsertCommand {
	return &InsertCommand{Text: text}
}

// Execute inserts text at the selection.
func (c *InsertCommand) Execute(t *Target) error {
	c.operation = nil
	if !t.Selection.Active {
		return ErrNoActiveSelection
	}

	before := t.Selection
	r := before.Selection.Range()
	edit := buffer.NewEdit(r, c.Text)
	if edit.IsNoOp() {
		return nil
	}

	result, err := t.Apply(edit)
	if err != nil {
		return fmt.Errorf("insert at %s: %w", r, err)
	}

	t.Selection = Active(cursor.NewCursorSelection(result.NewRange.End))
	c.operation = NewOperation(result, before, t.Selection)
	return nil
}

// Undo removes the inserted text and restores the selection.
func (c *InsertCommand) Undo(t *Target) error {
	return undoOperation(t, c.operation, "insert")
}

// Redo re-inserts the text where it was first inserted.
func (c *InsertCommand) Redo(t *Target) error {
	return redoOperation(t, c.operation, "insert")
}

// Description returns a human-readable description.
func (c *InsertCommand) Description() string {
	n := uniseg.GraphemeClusterCount(c.Text)
	switch {
	case c.Text == "\n":
		return "Insert newline"
	case c.Text == "\t":
		return "Insert tab"
	case n == 1:
		return fmt.Sprintf("Type '%s'", c.Text)
	case n <= 20:
		return fmt.Sprintf("Insert \"%s\"", c.Text)
	}
	return fmt.Sprintf("Insert %d characters", n)
}

// DeleteBackwardCommand deletes the selection, or the character before an
// empty selection.
type DeleteBackwardCommand struct {
	operation *Operation
}

// NewDeleteBackwardCommand creates a new backspace command.
func NewDeleteBackwardCommand() *DeleteBackwardCommand {
	return &DeleteBackwardCommand{}
}

// Execute deletes backward from the selection.
// An empty selection at the start of the document is left alone.
func (c *DeleteBackwardCommand) Execute(t *Target) error {
	c.operation = nil
	if !t.Selection.Active {
		return ErrNoActiveSelection
	}

	before := t.Selection
	r := before.Selection.Range()
	if r.IsEmpty() {
		if r.Start <= 0 {
			return nil
		}
		r = buffer.NewRange(r.Start-1, r.Start)
	}

	result, err := t.Apply(buffer.NewDelete(r))
	if err != nil {
		return fmt.Errorf("delete %s: %w", r, err)
	}

	t.Selection = Active(cursor.NewCursorSelection(r.Start))
	c.operation = NewOperation(result, before, t.Selection)
	return nil
}

// Undo restores the deleted text and the selection.
func (c *DeleteBackwardCommand) Undo(t *Target) error {
	return undoOperation(t, c.operation, "delete")
}

// Redo deletes the same text again.
func (c *DeleteBackwardCommand) Redo(t *Target) error {
	return redoOperation(t, c.operation, "delete")
}

// Description returns a human-readable description.
func (c *DeleteBackwardCommand) Description() string {
	if c.operation != nil && c.operation.Result.OldRange.Len() > 1 {
		return fmt.Sprintf("Delete %d characters", c.operation.Result.OldRange.Len())
	}
	return "Backspace"
}

// ReplaceCommand replaces text in a specific range.
// The selection, if any, is carried through the edit.
type ReplaceCommand struct {
	Range     Range
	NewText   string
	operation *Operation
}

// NewReplaceCommand creates a new replace command.
func NewReplaceCommand(r Range, newText string) *ReplaceCommand {
	return &ReplaceCommand{
		Range:   r,
		NewText: newText,
	}
}

// Execute replaces text in the specified range.
func (c *ReplaceCommand) Execute(t *Target) error {
	c.operation = nil
	before := t.Selection

	edit := buffer.NewEdit(c.Range, c.NewText)
	if edit.IsNoOp() && c.Range.Within(t.Buffer.Len()) {
		return nil
	}

	result, err := t.Apply(edit)
	if err != nil {
		return fmt.Errorf("replace %s: %w", c.Range, err)
	}

	if t.Selection.Active {
		sel := cursor.TransformSelection(t.Selection.Selection, result)
		t.Selection = Active(sel.Clamp(t.Buffer.Len()))
	}
	c.operation = NewOperation(result, before, t.Selection)
	return nil
}

// Undo restores the original text and selection.
func (c *ReplaceCommand) Undo(t *Target) error {
	return undoOperation(t, c.operation, "replace")
}

// Redo re-applies the replacement.
func (c *ReplaceCommand) Redo(t *Target) error {
	return redoOperation(t, c.operation, "replace")
}

// Description returns a human-readable description.
func (c *ReplaceCommand) Description() string {
	edit := buffer.NewEdit(c.Range, c.NewText)
	oldLen := c.Range.Len()
	newLen := uniseg.GraphemeClusterCount(c.NewText)
	switch {
	case edit.IsDelete():
		return fmt.Sprintf("Delete %d characters", oldLen)
	case edit.IsInsert(), edit.IsNoOp():
		return fmt.Sprintf("Insert %d characters", newLen)
	}
	return fmt.Sprintf("Replace %d with %d characters", oldLen, newLen)
}

// undoOperation applies the inverse of op and restores the selection.
func undoOperation(t *Target, op *Operation, what string) error {
	if op == nil {
		return nil
	}
	if _, err := t.Apply(op.Undo()); err != nil {
		return fmt.Errorf("undo %s: %w", what, err)
	}
	t.Selection = op.Before
	return nil
}

// redoOperation re-applies op and restores the selection it left behind.
func redoOperation(t *Target, op *Operation, what string) error {
	if op == nil {
		return nil
	}
	if _, err := t.Apply(op.Redo()); err != nil {
		return fmt.Errorf("redo %s: %w", what, err)
	}
	t.Selection = op.After
	return nil
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute(t *Target) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(t); err != nil {
			// On error, try to undo what we've done
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(t)
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(t *Target) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(t); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Redo re-applies all commands in order.
func (c *CompoundCommand) Redo(t *Target) error {
	for i, cmd := range c.Commands {
		if err := cmd.Redo(t); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(t)
			}
			return fmt.Errorf("redo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}
