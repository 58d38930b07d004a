package editor

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"umlboard/diagram"
	"umlboard/geometry"
	"umlboard/snapping"
)

// Mover drags and resizes shapes with snapping.
type Mover struct {
	store  *Store
	bus    *Bus
	frames *FrameScheduler
	snap   *snapping.Engine
	logger *log.Logger

	drag *Drag
}

// NewMover creates a shape mover.
func NewMover(store *Store, bus *Bus, frames *FrameScheduler, snap *snapping.Engine, logger *log.Logger) *Mover {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Mover{store: store, bus: bus, frames: frames, snap: snap, logger: logger}
}

// Active reports whether a move or resize is in progress.
func (m *Mover) Active() bool { return m.drag != nil && m.drag.Active() }

// StartMove begins moving shape id from the diagram point at.
func (m *Mover) StartMove(id string, at diagram.Point) error {
	shape := m.store.FindShape(id)
	if shape == nil {
		return fmt.Errorf("%w: %s", ErrUnknownShape, id)
	}
	box := shape.Frame()
	orig := box.Rect()
	m.snap.Start(orig)

	m.drag = StartDrag(m.bus, m.frames, "move", DragCallbacks{
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
			raw := diagram.Point{X: orig.X + delta.X, Y: orig.Y + delta.Y}
			p := m.snap.SnapPoint(raw, id, axis)
			box.X, box.Y = p.X, p.Y
		},
		End:    func(Event) { m.finish(id, box, orig) },
		Cancel: func() { m.restore(box, orig) },
	})
	m.logger.Debug("move started", "id", id)
	return nil
}

// StartResize begins resizing shape id by its bottom-right corner.
func (m *Mover) StartResize(id string, at diagram.Point) error {
	shape := m.store.FindShape(id)
	if shape == nil {
		return fmt.Errorf("%w: %s", ErrUnknownShape, id)
	}
	box := shape.Frame()
	orig := box.Rect()
	m.snap.Start(diagram.Rect{X: orig.Right(), Y: orig.Bottom()})

	m.drag = StartDrag(m.bus, m.frames, "resize", DragCallbacks{
		Move: func(ev Event) {
			delta := ev.Point.Sub(at)
			raw := diagram.Point{X: orig.Right() + delta.X, Y: orig.Bottom() + delta.Y}
			p := m.snap.SnapPoint(raw, id, snapping.AxisBoth)
			box.Width = max(p.X-orig.X, diagram.MinWidth)
			box.Height = max(p.Y-orig.Y, diagram.MinHeight)
		},
		End:    func(Event) { m.finish(id, box, orig) },
		Cancel: func() { m.restore(box, orig) },
	})
	m.logger.Debug("resize started", "id", id)
	return nil
}

// Cancel aborts the current move or resize.
func (m *Mover) Cancel() {
	if m.drag != nil {
		m.drag.Cancel()
	}
}

func (m *Mover) finish(id string, box *diagram.Box, orig diagram.Rect) {
	m.snap.Stop()
	m.drag = nil
	if box.Rect() == orig {
		return
	}
	if err := m.store.Save(); err != nil {
		m.logger.Error("save after move", "id", id, "err", err)
	}
}

func (m *Mover) restore(box *diagram.Box, orig diagram.Rect) {
	box.SetRect(orig)
	m.snap.Stop()
	m.drag = nil
}
