// Package cursor provides the selection model and its transformation through
// buffer edits.
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current cursor position (where typing would occur)
//
// When Anchor == Head, the selection represents just a cursor with no
// selected text. The selection can extend forward (head > anchor) or
// backward (head < anchor), preserving the user's selection direction.
//
// Basic usage:
//
//	sel := cursor.NewCursorSelection(10) // Cursor at offset 10
//	sel = sel.Extend(20)                 // Select from 10 to 20
//
//	// Keep the selection valid after an edit elsewhere in the buffer
//	result, _ := buf.ApplyEdit(buffer.NewInsert(0, "Hello"))
//	sel = cursor.TransformSelection(sel, result)
//
// Selection is an immutable value type and safe for concurrent use.
package cursor
