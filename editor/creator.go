package editor

import (
	"io"

	"github.com/charmbracelet/log"

	"umlboard/diagram"
	"umlboard/geometry"
)

// CreatorState is the phase of a relationship gesture.
type CreatorState int

const (
	StateIdle CreatorState = iota
	StatePendingFromSource
	StateAppendingBendPoints
	StateEditingEndpoint
)

// String returns the string representation of a CreatorState.
func (s CreatorState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePendingFromSource:
		return "PendingFromSource"
	case StateAppendingBendPoints:
		return "AppendingBendPoints"
	case StateEditingEndpoint:
		return "EditingEndpoint"
	default:
		return "Unknown"
	}
}

// EndpointSide selects one end of a relationship.
type EndpointSide int

const (
	EndpointSrc EndpointSide = iota
	EndpointTrg
)

// String returns the string representation of an EndpointSide.
func (s EndpointSide) String() string {
	if s == EndpointTrg {
		return "trg"
	}
	return "src"
}

// ConnectEvent is raised when the user clicks a connection point.
type ConnectEvent struct {
	ID       string
	Kind     diagram.Kind
	Border   diagram.Border
	Position float64
}

// CreatorOption configures a RelationshipCreator.
type CreatorOption func(*RelationshipCreator)

// WithAllowSelf permits relationships from a shape to itself.
func WithAllowSelf(allow bool) CreatorOption {
	return func(c *RelationshipCreator) { c.allowSelf = allow }
}

// WithRelationType sets the type of newly created relationships.
func WithRelationType(t diagram.RelationType) CreatorOption {
	return func(c *RelationshipCreator) {
		if t.Valid() {
			c.relType = t
		}
	}
}

// WithCreatorLogger sets the logger for gesture tracing.
func WithCreatorLogger(l *log.Logger) CreatorOption {
	return func(c *RelationshipCreator) {
		if l != nil {
			c.logger = l
		}
	}
}

// RelationshipCreator drives the interactive creation of a relationship
// and the re-attachment of an existing relationship's endpoint.
//
// While a gesture is in progress the pending relationship's Src is the
// anchored end: the source shape for a new relationship, or the opposite
// endpoint when editing. Bend points are collected in click order
// starting from that anchor.
type RelationshipCreator struct {
	store     *Store
	bus       *Bus
	allowSelf bool
	relType   diagram.RelationType
	logger    *log.Logger

	state   CreatorState
	session *session
	pending *diagram.Relationship
	editing EndpointSide
	start   diagram.Point
	end     diagram.Point
}

// NewRelationshipCreator creates an idle creator.
func NewRelationshipCreator(store *Store, bus *Bus, opts ...CreatorOption) *RelationshipCreator {
	c := &RelationshipCreator{
		store:   store,
		bus:     bus,
		relType: diagram.Association,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current phase.
func (c *RelationshipCreator) State() CreatorState { return c.state }

// Active reports whether a gesture is in progress.
func (c *RelationshipCreator) Active() bool { return c.state != StateIdle }

// SetRelationType changes the type used for new relationships.
func (c *RelationshipCreator) SetRelationType(t diagram.RelationType) {
	if t.Valid() {
		c.relType = t
	}
}

// Pending returns a copy of the relationship under construction, or nil.
func (c *RelationshipCreator) Pending() *diagram.Relationship {
	if c.pending == nil {
		return nil
	}
	return c.pending.Clone()
}

// StartPoint is the fixed point the preview line starts from.
func (c *RelationshipCreator) StartPoint() diagram.Point { return c.start }

// EndPoint is the tentative end following the pointer.
func (c *RelationshipCreator) EndPoint() diagram.Point { return c.end }

// PreviewPath is the polyline to draw while a gesture is in progress.
func (c *RelationshipCreator) PreviewPath() []diagram.Point {
	if c.pending == nil {
		return nil
	}
	return geometry.Path(c.start, c.pending.BendPoints, c.end)
}

// Connect handles a click on a connection point. From Idle it starts a
// new relationship; otherwise it completes the current gesture.
func (c *RelationshipCreator) Connect(ev ConnectEvent) {
	if c.state == StateIdle {
		c.begin(ev)
		return
	}
	c.complete(ev)
}

// EditEndpoint starts re-attaching one end of an existing relationship.
func (c *RelationshipCreator) EditEndpoint(relID string, side EndpointSide) error {
	r := c.store.FindRelationship(relID)
	if r == nil {
		return ErrUnknownRelationship
	}
	c.Cancel()

	anchor := r.Trg
	if side == EndpointTrg {
		anchor = r.Src
	}
	c.pending = &diagram.Relationship{
		ID:         r.ID,
		Type:       r.Type,
		Src:        anchor,
		BendPoints: []diagram.Point{},
	}
	c.editing = side

	switch {
	case len(r.BendPoints) > 0 && side == EndpointSrc:
		c.start = r.BendPoints[0]
	case len(r.BendPoints) > 0:
		c.start = r.BendPoints[len(r.BendPoints)-1]
	default:
		c.start = geometry.EndpointPoint(c.store.FindShape(anchor.ID), anchor)
	}
	c.end = c.start
	c.state = StateEditingEndpoint
	c.listen("edit-endpoint")
	c.logger.Debug("editing endpoint", "rel", relID, "side", side)
	return nil
}

// Cancel abandons the gesture. The diagram is left untouched.
func (c *RelationshipCreator) Cancel() {
	if c.session != nil {
		c.session.abort()
		return
	}
	c.reset()
}

// Dispose releases every listener held by the creator.
func (c *RelationshipCreator) Dispose() { c.Cancel() }

func (c *RelationshipCreator) begin(ev ConnectEvent) {
	shape := c.store.FindShape(ev.ID)
	if shape == nil {
		c.logger.Warn("connect from unknown shape", "id", ev.ID)
		return
	}
	ep := diagram.Endpoint{ID: ev.ID, Kind: shape.Kind(), Border: ev.Border, Position: ev.Position}
	c.pending = &diagram.Relationship{Type: c.relType, Src: ep, BendPoints: []diagram.Point{}}
	c.start = geometry.ConnectionPoint(shape, ev.Border, ev.Position)
	c.end = c.start
	c.state = StatePendingFromSource
	c.listen("connect")
	c.logger.Debug("relationship started", "src", ev.ID, "border", ev.Border)
}

func (c *RelationshipCreator) complete(ev ConnectEvent) {
	shape := c.store.FindShape(ev.ID)
	if shape == nil {
		c.logger.Warn("connect to unknown shape", "id", ev.ID)
		return
	}
	if ev.ID == c.pending.Src.ID && !c.allowSelf {
		c.logger.Debug("ignoring self connection", "id", ev.ID)
		return
	}

	ep := diagram.Endpoint{ID: ev.ID, Kind: shape.Kind(), Border: ev.Border, Position: ev.Position}
	if c.bus.Modifiers().Has(ModShift) {
		p := geometry.OrthogonalConstraint(c.end, c.lastFixed())
		ep.Position = geometry.BorderRelativePosition(shape.Frame().Rect(), ev.Border, p)
	}

	var err error
	if c.state == StateEditingEndpoint {
		err = c.finishEdit(ep)
	} else {
		rel := diagram.NewRelationship(c.pending.Src, ep)
		rel.Type = c.pending.Type
		rel.BendPoints = append([]diagram.Point{}, c.pending.BendPoints...)
		var added *diagram.Relationship
		if added, err = c.store.AddRelationship(rel); err == nil {
			c.store.Select(added.ID)
			c.logger.Debug("relationship created", "id", added.ID, "bends", len(added.BendPoints))
		}
	}
	if err != nil {
		c.logger.Error("complete relationship", "err", err)
	}
	c.session.end()
	c.reset()
}

func (c *RelationshipCreator) finishEdit(ep diagram.Endpoint) error {
	r := c.store.FindRelationship(c.pending.ID)
	if r == nil {
		return ErrUnknownRelationship
	}
	updated := r.Clone()
	added := c.pending.BendPoints

	if c.editing == EndpointSrc {
		ep.Mult = r.Src.Mult
		updated.Src = ep
		bends := make([]diagram.Point, 0, len(added)+len(r.BendPoints))
		for i := len(added) - 1; i >= 0; i-- {
			bends = append(bends, added[i])
		}
		updated.BendPoints = append(bends, r.BendPoints...)
	} else {
		ep.Mult = r.Trg.Mult
		updated.Trg = ep
		updated.BendPoints = append(append([]diagram.Point{}, r.BendPoints...), added...)
	}
	return c.store.UpdateRelationship(updated)
}

func (c *RelationshipCreator) listen(name string) {
	c.session = c.bus.begin(name, c.reset)
	c.session.on(PointerMove, c.onMove)
	c.session.on(PointerDown, c.onDown)
	c.session.on(KeyDown, c.onKey)
}

func (c *RelationshipCreator) onMove(ev Event) {
	if ev.Shift() {
		c.end = geometry.OrthogonalConstraint(ev.Point, c.lastFixed())
		return
	}
	c.end = ev.Point
}

func (c *RelationshipCreator) onDown(ev Event) {
	switch ev.Button {
	case ButtonPrimary:
		if c.store.ShapeAt(ev.Point) != nil {
			return
		}
		p := ev.Point
		if ev.Shift() {
			p = geometry.OrthogonalConstraint(p, c.lastFixed())
		}
		c.pending.BendPoints = append(c.pending.BendPoints, p)
		if c.state == StatePendingFromSource {
			c.state = StateAppendingBendPoints
		}
	case ButtonSecondary:
		n := len(c.pending.BendPoints)
		if n == 0 {
			c.Cancel()
			return
		}
		c.pending.BendPoints = c.pending.BendPoints[:n-1]
		if n == 1 && c.state == StateAppendingBendPoints {
			c.state = StatePendingFromSource
		}
	}
}

func (c *RelationshipCreator) onKey(ev Event) {
	if ev.Key == KeyEscape {
		c.Cancel()
	}
}

func (c *RelationshipCreator) lastFixed() diagram.Point {
	if n := len(c.pending.BendPoints); n > 0 {
		return c.pending.BendPoints[n-1]
	}
	return c.start
}

func (c *RelationshipCreator) reset() {
	c.state = StateIdle
	c.pending = nil
	c.session = nil
	c.start = diagram.Point{}
	c.end = diagram.Point{}
}
