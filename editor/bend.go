package editor

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"umlboard/diagram"
	"umlboard/geometry"
	"umlboard/snapping"
)

// BendDragger moves a single bend point of a relationship.
type BendDragger struct {
	store  *Store
	bus    *Bus
	frames *FrameScheduler
	snap   *snapping.Engine
	logger *log.Logger

	drag *Drag
}

// NewBendDragger creates a bend point dragger.
func NewBendDragger(store *Store, bus *Bus, frames *FrameScheduler, snap *snapping.Engine, logger *log.Logger) *BendDragger {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &BendDragger{store: store, bus: bus, frames: frames, snap: snap, logger: logger}
}

// Active reports whether a bend point is being dragged.
func (b *BendDragger) Active() bool { return b.drag != nil && b.drag.Active() }

// Start begins dragging bend point index of relationship relID. With
// Shift held the point only moves along the dominant axis.
func (b *BendDragger) Start(relID string, index int, at diagram.Point) error {
	r := b.store.FindRelationship(relID)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrUnknownRelationship, relID)
	}
	if index < 0 || index >= len(r.BendPoints) {
		return fmt.Errorf("bend point %d out of range for %s", index, relID)
	}
	orig := r.BendPoints[index]
	b.snap.Start(diagram.Rect{X: orig.X, Y: orig.Y})

	b.drag = StartDrag(b.bus, b.frames, "bend", DragCallbacks{
		Move: func(ev Event) {
			delta := ev.Point.Sub(at)
			axis := snapping.AxisBoth
			if ev.Shift() {
				if geometry.Abs(delta.X) >= geometry.Abs(delta.Y) {
					delta.Y, axis = 0, snapping.AxisX
				} else {
					delta.X, axis = 0, snapping.AxisY
				}
			}
			r.BendPoints[index] = b.snap.SnapPoint(orig.Add(delta), relID, axis)
		},
		End: func(Event) {
			b.snap.Stop()
			b.drag = nil
			if r.BendPoints[index] == orig {
				return
			}
			if err := b.store.Save(); err != nil {
				b.logger.Error("save after bend drag", "rel", relID, "err", err)
			}
		},
		Cancel: func() {
			r.BendPoints[index] = orig
			b.snap.Stop()
			b.drag = nil
		},
	})
	b.logger.Debug("bend drag started", "rel", relID, "index", index)
	return nil
}
