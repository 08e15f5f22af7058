package engine

import (
	"errors"

	"github.com/dshills/caret/internal/engine/buffer"
	"github.com/dshills/caret/internal/engine/history"
)

// Errors returned by engine operations.
var (
	// ErrOffsetOutOfBounds indicates an offset is outside [0, Len()].
	ErrOffsetOutOfBounds = buffer.ErrOffsetOutOfBounds

	// ErrInvalidRange indicates an inverted or unmappable range.
	ErrInvalidRange = buffer.ErrInvalidRange

	// ErrNoActiveSelection indicates an edit needed a selection and there was none.
	ErrNoActiveSelection = history.ErrNoActiveSelection

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrReadOnly indicates an edit was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)
