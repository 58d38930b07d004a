package editor

import (
	"umlboard/diagram"
)

// DefaultHoverThreshold is how close the pointer must be to a
// relationship to preview a new bend point on it.
const DefaultHoverThreshold = 10

// HoverPreview tracks the point on the nearest relationship where a bend
// point would be inserted.
type HoverPreview struct {
	store     *Store
	threshold float64

	relID string
	point diagram.Point
	index int
}

// NewHoverPreview creates a hover tracker. Non-positive thresholds use
// DefaultHoverThreshold.
func NewHoverPreview(store *Store, threshold float64) *HoverPreview {
	if threshold <= 0 {
		threshold = DefaultHoverThreshold
	}
	return &HoverPreview{store: store, threshold: threshold}
}

// Threshold returns the hover distance.
func (h *HoverPreview) Threshold() float64 { return h.threshold }

// Update recomputes the preview for a diagram space position.
func (h *HoverPreview) Update(p diagram.Point) bool {
	r, proj, ok := h.store.RelationshipAt(p, h.threshold)
	if !ok {
		h.Clear()
		return false
	}
	h.relID, h.point, h.index = r.ID, proj.Point, proj.SegmentIndex
	return true
}

// Preview returns the relationship, point and insertion index of the
// current preview.
func (h *HoverPreview) Preview() (relID string, p diagram.Point, index int, ok bool) {
	return h.relID, h.point, h.index, h.relID != ""
}

// Clear drops the preview.
func (h *HoverPreview) Clear() {
	h.relID, h.point, h.index = "", diagram.Point{}, 0
}

// Commit inserts the previewed bend point and returns its index.
func (h *HoverPreview) Commit() (int, error) {
	if h.relID == "" {
		return 0, ErrUnknownRelationship
	}
	relID, p, index := h.relID, h.point, h.index
	h.Clear()
	return index, h.store.InsertBendPoint(relID, index, p)
}
