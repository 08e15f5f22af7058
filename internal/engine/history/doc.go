// Package history provides undo/redo for the text engine.
//
// The history system uses the Command pattern to encapsulate edit operations,
// enabling them to be executed, undone, and redone.
//
// # Targets
//
// Commands operate on a Target: the buffer plus the selection, which may be
// absent. A Target records every edit applied through it so that callers
// can invalidate derived state after Execute, Undo or Redo.
//
// # Commands
//
// Built-in commands:
//   - InsertCommand: replace the selection with text
//   - DeleteBackwardCommand: delete the selection or the character before it
//   - ReplaceCommand: replace an explicit range, carrying the selection along
//   - CompoundCommand: group multiple commands as one undo unit
//
// # History Stack
//
//	h := NewHistory(1000) // Max 1000 undo entries
//	t := NewTarget(buf, Active(cursor.NewCursorSelection(0)))
//
//	h.Execute(NewInsertCommand("hi"), t)
//	h.Undo(t)
//	h.Redo(t)
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	h.BeginGroup("Paste")
//	// ... multiple edits ...
//	h.EndGroup()
//
// CancelGroup drops the group but keeps its edits; RollbackGroup undoes them.
package history
