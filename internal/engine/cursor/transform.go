package cursor

import "github.com/dshills/caret/internal/engine/buffer"

// TransformOffset updates an offset after an applied edit.
//
// Transformation rules:
//   - If the replaced range ends at or before offset: shift by the edit's delta
//     (an insertion exactly at offset pushes it forward)
//   - If the replaced range starts at or after offset: offset unchanged
//   - If the replaced range spans offset: move offset to end of new text
func TransformOffset(offset Offset, result buffer.EditResult) Offset {
	old := result.OldRange

	if old.End <= offset {
		return offset + result.Delta
	}

	if old.Start >= offset {
		return offset
	}

	return result.NewRange.End
}

// TransformSelection updates a selection after an edit.
// Both anchor and head are transformed independently.
func TransformSelection(sel Selection, result buffer.EditResult) Selection {
	return Selection{
		Anchor: TransformOffset(sel.Anchor, result),
		Head:   TransformOffset(sel.Head, result),
	}
}
