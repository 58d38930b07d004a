package editor

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"umlboard/diagram"
	"umlboard/geometry"
	"umlboard/history"
)

// Sentinel errors for store operations.
var (
	ErrUnknownShape        = errors.New("unknown shape")
	ErrUnknownRelationship = errors.New("unknown relationship")
	ErrNothingToUndo       = errors.New("nothing to undo")
	ErrNothingToRedo       = errors.New("nothing to redo")
)

// Store owns the live diagram and records a history snapshot after every
// committed change. Controllers may mutate shapes in place during a
// gesture and call Save when it ends.
type Store struct {
	d        *diagram.Diagram
	history  *history.Manager
	selected string
	logger   *log.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger for store events.
func WithStoreLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store backed by h. The current history snapshot is
// restored if there is one, otherwise the empty diagram is recorded.
func NewStore(h *history.Manager, opts ...StoreOption) *Store {
	if h == nil {
		h = history.New()
	}
	s := &Store{d: diagram.New(), history: h, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}

	if snap, ok := h.Current(); ok {
		if err := s.restore(snap); err != nil {
			s.logger.Warn("discarding unreadable history snapshot", "err", err)
		} else {
			return s
		}
	}
	if err := s.Save(); err != nil {
		s.logger.Warn("record initial snapshot", "err", err)
	}
	return s
}

// Diagram returns the live diagram owned by the store.
func (s *Store) Diagram() *diagram.Diagram { return s.d }

// History returns the history manager backing the store.
func (s *Store) History() *history.Manager { return s.history }

// Shapes returns every shape in paint order.
func (s *Store) Shapes() []diagram.Shape { return s.d.Shapes() }

// Relationships returns the committed relationships.
func (s *Store) Relationships() []*diagram.Relationship { return s.d.Relationships }

// FindShape returns the shape with the given id, or nil.
func (s *Store) FindShape(id string) diagram.Shape { return s.d.FindShape(id) }

// FindRelationship returns the relationship with the given id, or nil.
func (s *Store) FindRelationship(id string) *diagram.Relationship {
	return s.d.FindRelationship(id)
}

// ShapeAt returns the topmost shape containing p, or nil.
func (s *Store) ShapeAt(p diagram.Point) diagram.Shape {
	shapes := s.d.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if shapes[i].Frame().Rect().Contains(p) {
			return shapes[i]
		}
	}
	return nil
}

// RelationshipAt returns the relationship whose path passes closest to p,
// provided it is strictly within threshold.
func (s *Store) RelationshipAt(p diagram.Point, threshold float64) (*diagram.Relationship, geometry.Projection, bool) {
	var (
		best     *diagram.Relationship
		bestProj geometry.Projection
	)
	for _, r := range s.d.Relationships {
		proj, ok := geometry.ClosestPointOnPolyline(s.Path(r), p)
		if !ok || proj.Distance >= threshold {
			continue
		}
		if best == nil || proj.Distance < bestProj.Distance {
			best, bestProj = r, proj
		}
	}
	return best, bestProj, best != nil
}

// AddEntity creates an entity at (x, y), selects it and records a snapshot.
func (s *Store) AddEntity(name string, x, y float64) *diagram.Entity {
	e := diagram.NewEntity(name, x, y)
	s.AddShape(e)
	return e
}

// AddNote creates a note at (x, y), selects it and records a snapshot.
func (s *Store) AddNote(content string, x, y float64) *diagram.Note {
	n := diagram.NewNote(content, x, y)
	s.AddShape(n)
	return n
}

// AddEnumeration creates an enumeration at (x, y), selects it and records a snapshot.
func (s *Store) AddEnumeration(name string, x, y float64) *diagram.Enumeration {
	e := diagram.NewEnumeration(name, x, y)
	s.AddShape(e)
	return e
}

// AddShape inserts a shape, assigning an id if it has none.
func (s *Store) AddShape(shape diagram.Shape) {
	b := shape.Frame()
	if b.ID == "" {
		b.ID = diagram.NewID()
	}
	b.Width = max(b.Width, diagram.MinWidth)
	b.Height = max(b.Height, diagram.MinHeight)
	s.d.AddShape(shape)
	s.selected = b.ID
	s.commit("add shape", "id", b.ID, "kind", shape.Kind())
}

// DeleteShape removes a shape and every relationship attached to it as a
// single undoable step.
func (s *Store) DeleteShape(id string) error {
	ok, removed := s.d.RemoveShape(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownShape, id)
	}
	if s.selected == id {
		s.selected = ""
	}
	for _, r := range removed {
		if s.selected == r.ID {
			s.selected = ""
		}
	}
	s.commit("delete shape", "id", id, "cascade", len(removed))
	return nil
}

// AddRelationship commits a new relationship. Both endpoints must
// reference existing shapes.
func (s *Store) AddRelationship(r *diagram.Relationship) (*diagram.Relationship, error) {
	if err := s.checkEndpoints(r); err != nil {
		return nil, err
	}
	c := r.Clone()
	if c.ID == "" || s.d.FindRelationship(c.ID) != nil {
		c.ID = diagram.NewID()
	}
	if c.Type == "" {
		c.Type = diagram.Association
	}
	s.fillKinds(c)
	s.d.Relationships = append(s.d.Relationships, c)
	s.commit("add relationship", "id", c.ID, "src", c.Src.ID, "trg", c.Trg.ID)
	return c, nil
}

// UpdateRelationship replaces the stored relationship with the same id.
func (s *Store) UpdateRelationship(r *diagram.Relationship) error {
	for i, cur := range s.d.Relationships {
		if cur.ID != r.ID {
			continue
		}
		if err := s.checkEndpoints(r); err != nil {
			return err
		}
		c := r.Clone()
		s.fillKinds(c)
		s.d.Relationships[i] = c
		s.commit("update relationship", "id", c.ID)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownRelationship, r.ID)
}

// DeleteRelationship removes a relationship.
func (s *Store) DeleteRelationship(id string) error {
	if !s.d.RemoveRelationship(id) {
		return fmt.Errorf("%w: %s", ErrUnknownRelationship, id)
	}
	if s.selected == id {
		s.selected = ""
	}
	s.commit("delete relationship", "id", id)
	return nil
}

// DeleteSelected removes the selected shape or relationship.
func (s *Store) DeleteSelected() error {
	switch id := s.selected; {
	case id == "":
		return nil
	case s.d.FindShape(id) != nil:
		return s.DeleteShape(id)
	default:
		return s.DeleteRelationship(id)
	}
}

// AddBendPoint inserts a bend point on the segment of the relationship's
// path closest to p. The stored point is p projected onto that segment.
func (s *Store) AddBendPoint(relID string, p diagram.Point) (int, error) {
	r := s.d.FindRelationship(relID)
	if r == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRelationship, relID)
	}
	proj, ok := geometry.ClosestPointOnPolyline(s.Path(r), p)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRelationship, relID)
	}
	return proj.SegmentIndex, s.InsertBendPoint(relID, proj.SegmentIndex, proj.Point)
}

// InsertBendPoint inserts p at index in the relationship's bend points.
func (s *Store) InsertBendPoint(relID string, index int, p diagram.Point) error {
	r := s.d.FindRelationship(relID)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrUnknownRelationship, relID)
	}
	index = min(max(index, 0), len(r.BendPoints))
	r.BendPoints = append(r.BendPoints, diagram.Point{})
	copy(r.BendPoints[index+1:], r.BendPoints[index:])
	r.BendPoints[index] = p
	s.commit("add bend point", "id", relID, "index", index)
	return nil
}

// RemoveBendPoint deletes the bend point at index.
func (s *Store) RemoveBendPoint(relID string, index int) error {
	r := s.d.FindRelationship(relID)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrUnknownRelationship, relID)
	}
	if index < 0 || index >= len(r.BendPoints) {
		return fmt.Errorf("bend point %d out of range", index)
	}
	r.BendPoints = append(r.BendPoints[:index], r.BendPoints[index+1:]...)
	s.commit("remove bend point", "id", relID, "index", index)
	return nil
}

// AutoRoute replaces a relationship's endpoints and bend points with an
// orthogonal route around the other shapes.
func (s *Store) AutoRoute(relID string) error {
	r := s.d.FindRelationship(relID)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrUnknownRelationship, relID)
	}
	src, okSrc := diagram.RectOf(s.d.FindShape(r.Src.ID))
	trg, okTrg := diagram.RectOf(s.d.FindShape(r.Trg.ID))
	if !okSrc || !okTrg {
		return fmt.Errorf("%w: endpoint of %s", ErrUnknownShape, relID)
	}

	var obstacles []diagram.Rect
	for _, sh := range s.d.Shapes() {
		if id := sh.Frame().ID; id != r.Src.ID && id != r.Trg.ID {
			obstacles = append(obstacles, sh.Frame().Rect())
		}
	}

	route := geometry.RoutePath(src, trg, obstacles)
	r.Src.Border, r.Src.Position = route.SrcBorder, 0.5
	r.Trg.Border, r.Trg.Position = route.TrgBorder, 0.5
	r.BendPoints = route.Bends()
	s.commit("auto route", "id", relID, "bends", len(r.BendPoints))
	return nil
}

// Path returns the full polyline of a relationship computed from the
// current shape geometry. Missing shapes resolve to the origin.
func (s *Store) Path(r *diagram.Relationship) []diagram.Point {
	start := geometry.EndpointPoint(s.d.FindShape(r.Src.ID), r.Src)
	end := geometry.EndpointPoint(s.d.FindShape(r.Trg.ID), r.Trg)
	return geometry.Path(start, r.BendPoints, end)
}

// LabelPosition is where a relationship's name is drawn.
func (s *Store) LabelPosition(r *diagram.Relationship) diagram.Point {
	return geometry.PolylineMidpoint(s.Path(r))
}

// MultiplicityPositions returns where the source and target multiplicity
// labels are drawn.
func (s *Store) MultiplicityPositions(r *diagram.Relationship) (src, trg diagram.Point) {
	path := s.Path(r)
	src = path[0].Add(geometry.MultiplicityOffset(r.Src.Border))
	trg = path[len(path)-1].Add(geometry.MultiplicityOffset(r.Trg.Border))
	return src, trg
}

// Bounds returns the bounding box of every shape.
func (s *Store) Bounds() diagram.Rect {
	return geometry.BoundingBox(s.d.Shapes())
}

// Select marks a shape or relationship as selected. An empty id clears it.
func (s *Store) Select(id string) { s.selected = id }

// Selected returns the selected id, or "".
func (s *Store) Selected() string { return s.selected }

// Save records the current diagram in the history.
func (s *Store) Save() error {
	snap, err := diagram.Marshal(s.d)
	if err != nil {
		return err
	}
	s.history.Push(snap)
	return nil
}

// CanUndo reports whether an earlier snapshot exists.
func (s *Store) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a later snapshot exists.
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// Undo restores the previous snapshot.
func (s *Store) Undo() error {
	snap, ok := s.history.Undo()
	if !ok {
		return ErrNothingToUndo
	}
	return s.restore(snap)
}

// Redo restores the next snapshot.
func (s *Store) Redo() error {
	snap, ok := s.history.Redo()
	if !ok {
		return ErrNothingToRedo
	}
	return s.restore(snap)
}

// Export serializes the current diagram.
func (s *Store) Export() (string, error) {
	return diagram.Marshal(s.d)
}

// Import replaces the diagram and resets the history to it.
func (s *Store) Import(snapshot string) error {
	d, err := diagram.Unmarshal(snapshot)
	if err != nil {
		return err
	}
	if n := diagram.EnsureUniqueIDs(d); n > 0 {
		s.logger.Info("reassigned duplicate ids", "count", n)
	}
	snap, err := diagram.Marshal(d)
	if err != nil {
		return err
	}
	if err := s.history.Import(snap); err != nil {
		return err
	}
	s.d = d
	s.selected = ""
	return nil
}

func (s *Store) restore(snap string) error {
	d, err := diagram.Unmarshal(snap)
	if err != nil {
		return err
	}
	s.d = d
	if s.selected != "" && d.FindShape(s.selected) == nil && d.FindRelationship(s.selected) == nil {
		s.selected = ""
	}
	return nil
}

func (s *Store) commit(msg string, keyvals ...any) {
	if err := s.Save(); err != nil {
		s.logger.Error("record snapshot", "op", msg, "err", err)
		return
	}
	s.logger.Debug(msg, keyvals...)
}

func (s *Store) checkEndpoints(r *diagram.Relationship) error {
	if s.d.FindShape(r.Src.ID) == nil {
		return fmt.Errorf("%w: source %q", ErrUnknownShape, r.Src.ID)
	}
	if s.d.FindShape(r.Trg.ID) == nil {
		return fmt.Errorf("%w: target %q", ErrUnknownShape, r.Trg.ID)
	}
	return nil
}

func (s *Store) fillKinds(r *diagram.Relationship) {
	if sh := s.d.FindShape(r.Src.ID); sh != nil {
		r.Src.Kind = sh.Kind()
	}
	if sh := s.d.FindShape(r.Trg.ID); sh != nil {
		r.Trg.Kind = sh.Kind()
	}
}
