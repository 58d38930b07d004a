// Package editor is the interaction core of the diagram editor. It owns
// the live diagram and turns pointer and keyboard events into gestures:
// relationship creation, shape moves and resizes, bend point drags,
// panning and zooming.
//
// The package is single threaded. Front ends feed events through
// Editor.Dispatch and call Editor.Flush once per frame.
package editor

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"umlboard/diagram"
	"umlboard/geometry"
	"umlboard/history"
	"umlboard/snapping"
)

// ResizeHandle is the size of the corner area that starts a resize.
const ResizeHandle = 8

// Option configures an Editor.
type Option func(*settings)

type settings struct {
	logger         *log.Logger
	snapThreshold  float64
	hoverThreshold float64
	allowSelf      bool
	onSave         func(snapshot string) error
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSnapThreshold sets the snapping distance.
func WithSnapThreshold(t float64) Option {
	return func(s *settings) { s.snapThreshold = t }
}

// WithHoverThreshold sets the distance for bend point previews and hits.
func WithHoverThreshold(t float64) Option {
	return func(s *settings) { s.hoverThreshold = t }
}

// WithAllowSelfRelationships permits relationships from a shape to itself.
func WithAllowSelfRelationships(allow bool) Option {
	return func(s *settings) { s.allowSelf = allow }
}

// WithSaveHandler installs the callback run by the save command.
func WithSaveHandler(fn func(snapshot string) error) Option {
	return func(s *settings) { s.onSave = fn }
}

// Editor wires the store, event bus and gesture controllers together.
type Editor struct {
	Store   *Store
	Bus     *Bus
	Camera  *Camera
	Frames  *FrameScheduler
	Snap    *snapping.Engine
	Creator *RelationshipCreator
	Mover   *Mover
	Bends   *BendDragger
	Pan     *PanController
	Hover   *HoverPreview

	mode   Mode
	onSave func(string) error
	logger *log.Logger
}

// New creates an editor whose document is recorded in h.
func New(h *history.Manager, opts ...Option) *Editor {
	cfg := settings{logger: log.New(io.Discard), hoverThreshold: DefaultHoverThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Editor{
		Store:  NewStore(h, WithStoreLogger(cfg.logger)),
		Bus:    NewBus(),
		Camera: NewCamera(),
		Frames: NewFrameScheduler(),
		onSave: cfg.onSave,
		logger: cfg.logger,
	}
	e.Snap = snapping.NewEngine(e.Store,
		snapping.WithThreshold(cfg.snapThreshold),
		snapping.WithBypass(func() bool { return e.Bus.Modifiers().Has(ModCtrl) }),
		snapping.WithLogger(cfg.logger),
	)
	e.Creator = NewRelationshipCreator(e.Store, e.Bus,
		WithAllowSelf(cfg.allowSelf),
		WithCreatorLogger(cfg.logger),
	)
	e.Mover = NewMover(e.Store, e.Bus, e.Frames, e.Snap, cfg.logger)
	e.Bends = NewBendDragger(e.Store, e.Bus, e.Frames, e.Snap, cfg.logger)
	e.Pan = NewPanController(e.Bus, e.Frames, e.Camera)
	e.Hover = NewHoverPreview(e.Store, cfg.hoverThreshold)
	return e
}

// Dispatch routes one input event. Screen must be set; Point is derived
// from it through the camera.
func (e *Editor) Dispatch(ev Event) {
	ev.Point = e.Camera.ToDiagram(ev.Screen)

	if ev.Type == KeyDown {
		e.handleKey(ev)
		return
	}

	if ev.Type == PointerDown && ev.Button == ButtonPrimary && !e.Bus.Busy() {
		if relID, side, ok := e.endpointAt(ev.Point); ok {
			if err := e.Creator.EditEndpoint(relID, side); err != nil {
				e.logger.Error("edit endpoint", "rel", relID, "err", err)
			}
			return
		}
	}

	if ev.Type == PointerDown && ev.Button == ButtonPrimary &&
		(e.mode == ModeConnect || e.Creator.Active()) {
		if shape := e.Store.ShapeAt(ev.Point); shape != nil {
			e.Creator.Connect(connectEvent(shape, ev.Point))
			return
		}
	}

	if e.Bus.Dispatch(ev) || e.Bus.Busy() {
		return
	}

	switch ev.Type {
	case PointerMove:
		e.Hover.Update(ev.Point)
	case PointerDown:
		e.pointerDown(ev)
	}
}

// Flush applies coalesced pointer work. Call it once per frame.
func (e *Editor) Flush() { e.Frames.Flush() }

// Zoom zooms around a screen position by wheel steps.
func (e *Editor) Zoom(screen diagram.Point, steps int) { e.Camera.ZoomAt(screen, steps) }

// Guides returns the snap guides of the gesture in progress.
func (e *Editor) Guides() []snapping.Guide { return e.Snap.Guides() }

// Undo aborts any gesture and restores the previous snapshot.
func (e *Editor) Undo() error {
	e.Bus.Abort()
	e.Hover.Clear()
	return e.Store.Undo()
}

// Redo aborts any gesture and restores the next snapshot.
func (e *Editor) Redo() error {
	e.Bus.Abort()
	e.Hover.Clear()
	return e.Store.Redo()
}

// Save hands the current snapshot to the save handler.
func (e *Editor) Save() error {
	if e.onSave == nil {
		return nil
	}
	snap, err := e.Store.Export()
	if err != nil {
		return err
	}
	return e.onSave(snap)
}

// Close aborts any gesture and releases its listeners.
func (e *Editor) Close() {
	e.Bus.Abort()
	e.Snap.Stop()
}

func (e *Editor) handleKey(ev Event) {
	var err error
	switch Resolve(ev) {
	case CommandUndo:
		err = e.Undo()
	case CommandRedo:
		err = e.Redo()
	case CommandSave:
		err = e.Save()
	case CommandDelete:
		if !e.Bus.Busy() {
			err = e.Store.DeleteSelected()
		}
	case CommandCancel:
		if e.Bus.Busy() {
			e.Bus.Dispatch(ev)
		} else {
			e.Store.Select("")
		}
	default:
		e.Bus.Dispatch(ev)
	}

	switch {
	case err == nil, errors.Is(err, ErrNothingToUndo), errors.Is(err, ErrNothingToRedo):
	default:
		e.logger.Error("key command", "key", ev.Key, "err", err)
	}
}

func (e *Editor) pointerDown(ev Event) {
	if ev.Button != ButtonPrimary {
		if relID, index, ok := e.bendAt(ev.Point); ok && ev.Button == ButtonSecondary {
			if err := e.Store.RemoveBendPoint(relID, index); err != nil {
				e.logger.Error("remove bend point", "rel", relID, "index", index, "err", err)
			}
			e.Hover.Clear()
			return
		}
		if e.Store.ShapeAt(ev.Point) == nil {
			e.Pan.Start(ev.Screen)
		}
		return
	}

	if relID, index, ok := e.bendAt(ev.Point); ok {
		e.Store.Select(relID)
		if err := e.Bends.Start(relID, index, ev.Point); err != nil {
			e.logger.Error("start bend drag", "rel", relID, "index", index, "err", err)
		}
		return
	}

	if shape := e.Store.ShapeAt(ev.Point); shape != nil {
		id := shape.Frame().ID
		e.Store.Select(id)
		r := shape.Frame().Rect()
		corner := diagram.Point{X: r.Right(), Y: r.Bottom()}
		var err error
		if geometry.Distance(ev.Point, corner) < ResizeHandle {
			err = e.Mover.StartResize(id, ev.Point)
		} else {
			err = e.Mover.StartMove(id, ev.Point)
		}
		if err != nil {
			e.logger.Error("start shape drag", "id", id, "err", err)
		}
		return
	}

	if rel, _, ok := e.Store.RelationshipAt(ev.Point, e.Hover.Threshold()); ok {
		if ev.Mods.Has(ModCtrl) && e.Hover.Update(ev.Point) {
			if _, err := e.Hover.Commit(); err != nil {
				e.logger.Error("insert bend point", "rel", rel.ID, "err", err)
			}
		}
		e.Store.Select(rel.ID)
		return
	}

	e.Store.Select("")
}

// bendAt finds a bend point strictly within the hover threshold of p.
// endpointAt reports which end of the selected relationship lies under p.
func (e *Editor) endpointAt(p diagram.Point) (string, EndpointSide, bool) {
	r := e.Store.FindRelationship(e.Store.Selected())
	if r == nil || e.Creator.Active() {
		return "", EndpointSrc, false
	}
	path := e.Store.Path(r)
	if len(path) < 2 {
		return "", EndpointSrc, false
	}
	switch {
	case geometry.Distance(p, path[0]) < e.Hover.Threshold():
		return r.ID, EndpointSrc, true
	case geometry.Distance(p, path[len(path)-1]) < e.Hover.Threshold():
		return r.ID, EndpointTrg, true
	}
	return "", EndpointSrc, false
}

func (e *Editor) bendAt(p diagram.Point) (string, int, bool) {
	for _, r := range e.Store.Relationships() {
		for i, b := range r.BendPoints {
			if geometry.Distance(p, b) < e.Hover.Threshold() {
				return r.ID, i, true
			}
		}
	}
	return "", 0, false
}

func connectEvent(shape diagram.Shape, p diagram.Point) ConnectEvent {
	r := shape.Frame().Rect()
	border := geometry.NearestBorder(r, p)
	return ConnectEvent{
		ID:       shape.Frame().ID,
		Kind:     shape.Kind(),
		Border:   border,
		Position: geometry.BorderRelativePosition(r, border, p),
	}
}
