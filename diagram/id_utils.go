package diagram

import "github.com/google/uuid"

// NewID returns a fresh identifier for a shape, relationship or attribute.
func NewID() string {
	return uuid.NewString()
}

// EnsureUniqueIDs ensures every shape and relationship in a diagram has a
// unique, non-empty ID. Shapes keep the first occurrence of a duplicated
// ID; later duplicates are reassigned. Relationships are handled the same
// way against their own namespace. It returns the number of IDs changed.
func EnsureUniqueIDs(d *Diagram) int {
	if d == nil {
		return 0
	}

	changed := 0
	used := make(map[string]bool)
	for _, s := range d.Shapes() {
		b := s.Frame()
		if b.ID == "" || used[b.ID] {
			b.ID = NewID()
			changed++
		}
		used[b.ID] = true
	}

	usedRel := make(map[string]bool)
	for _, r := range d.Relationships {
		if r.ID == "" || usedRel[r.ID] {
			r.ID = NewID()
			changed++
		}
		usedRel[r.ID] = true
	}
	return changed
}
