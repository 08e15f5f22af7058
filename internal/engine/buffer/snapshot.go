package buffer

// Snapshot provides a read-only view of a buffer at a specific point in time.
// It will not change even if the original buffer is modified.
type Snapshot struct {
	text       string
	bounds     []int
	revisionID RevisionID
}

// Text returns the full snapshot content.
func (s *Snapshot) Text() string {
	return s.text
}

// Len returns the number of grapheme clusters in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.bounds) - 1
}

// IsEmpty returns true if the snapshot has no content.
func (s *Snapshot) IsEmpty() bool {
	return len(s.text) == 0
}

// RevisionID returns the revision this snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// Slice returns the text between two character offsets.
// Offsets are clamped and an inverted pair yields "".
func (s *Snapshot) Slice(start, end Offset) string {
	start, end = Clamp(start, s.Len()), Clamp(end, s.Len())
	if start >= end {
		return ""
	}
	return s.text[s.bounds[start]:s.bounds[end]]
}

// CharAt returns the grapheme cluster starting at offset.
func (s *Snapshot) CharAt(offset Offset) (string, bool) {
	if offset < 0 || offset >= s.Len() {
		return "", false
	}
	return s.text[s.bounds[offset]:s.bounds[offset+1]], true
}

// Chars calls fn for every cluster in [start, end) in order.
// Iteration stops early when fn returns false.
func (s *Snapshot) Chars(start, end Offset, fn func(offset Offset, char string) bool) {
	start, end = Clamp(start, s.Len()), Clamp(end, s.Len())
	for i := start; i < end; i++ {
		if !fn(i, s.text[s.bounds[i]:s.bounds[i+1]]) {
			return
		}
	}
}
