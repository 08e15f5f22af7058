package engine

import (
	"fmt"

	"github.com/dshills/caret/internal/engine/buffer"
)

// InvalidationKind says what a host has to refresh.
type InvalidationKind int

const (
	// InvalidateContent means the text changed. Layout, intrinsic size and
	// every previously computed geometry result are stale.
	InvalidateContent InvalidationKind = iota
	// InvalidateSelection means only the selection changed.
	InvalidateSelection
	// InvalidateStyle means the style or metrics changed; all geometry is stale.
	InvalidateStyle
)

// String returns the kind name.
func (k InvalidationKind) String() string {
	switch k {
	case InvalidateContent:
		return "content"
	case InvalidateSelection:
		return "selection"
	case InvalidateStyle:
		return "style"
	}
	return "unknown"
}

// Invalidation is delivered to the host after state changes.
type Invalidation struct {
	Kind InvalidationKind
	// Range covers the text written by a content change, in post-edit
	// offsets. For selection changes it is the new selection.
	Range    buffer.Range
	Revision buffer.RevisionID
}

// String returns a human-readable representation of the invalidation.
func (i Invalidation) String() string {
	return fmt.Sprintf("%s %s @%d", i.Kind, i.Range, i.Revision)
}

// InvalidationHandler is called synchronously after each change.
// It must not call back into the engine's mutating methods.
type InvalidationHandler func(Invalidation)
