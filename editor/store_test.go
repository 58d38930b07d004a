package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umlboard/diagram"
	"umlboard/history"
)

// box adds an entity with explicit geometry.
func box(t *testing.T, s *Store, name string, x, y, w, h float64) *diagram.Entity {
	t.Helper()
	e := diagram.NewEntity(name, x, y)
	e.Width, e.Height = w, h
	s.AddShape(e)
	return e
}

// link adds a relationship between two shapes from right to left border.
func link(t *testing.T, s *Store, a, b diagram.Shape, bends ...diagram.Point) *diagram.Relationship {
	t.Helper()
	r := diagram.NewRelationship(
		diagram.Endpoint{ID: a.Frame().ID, Border: diagram.BorderRight, Position: 0.5},
		diagram.Endpoint{ID: b.Frame().ID, Border: diagram.BorderLeft, Position: 0.5},
	)
	r.BendPoints = append(r.BendPoints, bends...)
	added, err := s.AddRelationship(r)
	require.NoError(t, err)
	return added
}

func TestNewStoreRecordsEmptyDiagram(t *testing.T) {
	h := history.New()
	s := NewStore(h)

	assert.Equal(t, 1, h.Len())
	assert.Empty(t, s.Shapes())
	assert.False(t, s.CanUndo())
	assert.ErrorIs(t, s.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, s.Redo(), ErrNothingToRedo)
}

func TestNewStoreRestoresCurrentSnapshot(t *testing.T) {
	h := history.New()
	first := NewStore(h)
	a := first.AddEntity("Customer", 10, 20)

	second := NewStore(h)
	got := second.FindShape(a.ID)
	require.NotNil(t, got)
	assert.Equal(t, "Customer", diagram.Label(got))
	assert.Equal(t, 2, h.Len(), "restoring must not push")
}

func TestNewStoreDiscardsMalformedSnapshot(t *testing.T) {
	h := history.New()
	h.Push(`{"entities":[null]}`)

	s := NewStore(h)
	assert.Empty(t, s.Shapes())
	assert.Equal(t, 2, h.Len())
}

func TestAddShapes(t *testing.T) {
	s := NewStore(history.New())

	e := s.AddEntity("Order", 0, 0)
	n := s.AddNote("remember", 400, 0)
	en := s.AddEnumeration("Status", 0, 300)

	assert.Len(t, s.Shapes(), 3)
	assert.Equal(t, en.ID, s.Selected())
	assert.Equal(t, diagram.KindEntity, s.FindShape(e.ID).Kind())
	assert.Equal(t, diagram.KindNote, s.FindShape(n.ID).Kind())
	assert.Equal(t, 4, s.History().Len())
}

func TestAddShapeEnforcesMinimumSize(t *testing.T) {
	s := NewStore(history.New())
	n := &diagram.Note{Box: diagram.Box{Width: 1, Height: 1}}
	s.AddShape(n)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, float64(diagram.MinWidth), n.Width)
	assert.Equal(t, float64(diagram.MinHeight), n.Height)
}

func TestShapeAtReturnsTopmost(t *testing.T) {
	s := NewStore(history.New())
	under := box(t, s, "under", 0, 0, 200, 200)
	note := s.AddNote("over", 50, 50)

	assert.Equal(t, note.ID, s.ShapeAt(diagram.Point{X: 60, Y: 60}).Frame().ID)
	assert.Equal(t, under.ID, s.ShapeAt(diagram.Point{X: 10, Y: 10}).Frame().ID)
	assert.Nil(t, s.ShapeAt(diagram.Point{X: 500, Y: 500}))
}

func TestAddRelationshipValidatesEndpoints(t *testing.T) {
	s := NewStore(history.New())
	a := box(t, s, "A", 0, 0, 100, 60)

	r := diagram.NewRelationship(
		diagram.Endpoint{ID: a.ID, Border: diagram.BorderRight, Position: 0.5},
		diagram.Endpoint{ID: "missing", Border: diagram.BorderLeft, Position: 0.5},
	)
	before := s.History().Len()
	_, err := s.AddRelationship(r)
	assert.ErrorIs(t, err, ErrUnknownShape)
	assert.Empty(t, s.Relationships())
	assert.Equal(t, before, s.History().Len())
}

func TestAddRelationshipStoresCopy(t *testing.T) {
	s := NewStore(history.New())
	a := box(t, s, "A", 0, 0, 100, 60)
	b := box(t, s, "B", 300, 0, 100, 60)

	r := diagram.NewRelationship(
		diagram.Endpoint{ID: a.ID, Border: diagram.BorderRight, Position: 0.5},
		diagram.Endpoint{ID: b.ID, Border: diagram.BorderLeft, Position: 0.5},
	)
	added, err := s.AddRelationship(r)
	require.NoError(t, err)

	r.BendPoints = append(r.BendPoints, diagram.Point{X: 1, Y: 1})
	assert.Empty(t, added.BendPoints)
	assert.Equal(t, diagram.KindEntity, added.Src.Kind)
	assert.Equal(t, []diagram.Point{{X: 100, Y: 30}, {X: 300, Y: 30}}, s.Path(added))
}

func TestDeleteShapeCascadesInOneStep(t *testing.T) {
	s := NewStore(history.New())
	a := box(t, s, "A", 0, 0, 100, 60)
	b := box(t, s, "B", 300, 0, 100, 60)
	c := box(t, s, "C", 0, 300, 100, 60)
	r := link(t, s, a, b)
	keep := link(t, s, b, c)

	before := s.History().Len()
	require.NoError(t, s.DeleteShape(a.ID))

	assert.Equal(t, before+1, s.History().Len())
	assert.Nil(t, s.FindShape(a.ID))
	assert.Nil(t, s.FindRelationship(r.ID))
	assert.NotNil(t, s.FindRelationship(keep.ID))

	require.NoError(t, s.Undo())
	assert.NotNil(t, s.FindShape(a.ID))
	assert.NotNil(t, s.FindRelationship(r.ID))
	assert.Len(t, s.Relationships(), 2)

	assert.ErrorIs(t, s.DeleteShape("missing"), ErrUnknownShape)
}

func TestUpdateAndDeleteRelationship(t *testing.T) {
	s := NewStore(history.New())
	a := box(t, s, "A", 0, 0, 100, 60)
	b := box(t, s, "B", 300, 0, 100, 60)
	r := link(t, s, a, b)

	edited := r.Clone()
	edited.Name = "places"
	edited.Type = diagram.Composition
	require.NoError(t, s.UpdateRelationship(edited))
	assert.Equal(t, "places", s.FindRelationship(r.ID).Name)

	missing := edited.Clone()
	missing.ID = "nope"
	assert.ErrorIs(t, s.UpdateRelationship(missing), ErrUnknownRelationship)

	require.NoError(t, s.DeleteRelationship(r.ID))
	assert.Empty(t, s.Relationships())
	assert.ErrorIs(t, s.DeleteRelationship(r.ID), ErrUnknownRelationship)
}

func TestRelationshipAt(t *testing.T) {
	s := NewStore(history.New())
	a := box(t, s, "A", 0, 0, 100, 60)
	b := box(t, s, "B", 300, 0, 100, 60)
	r := link(t, s, a, b)

	tests := []struct {
		name  string
		p     diagram.Point
		found bool
	}{
		{"on the line", diagram.Point{X: 200, Y: 30}, true},
		{"inside threshold", diagram.Point{X: 200, Y: 39}, true},
		{"at threshold", diagram.Point{X: 200, Y: 40}, false},
		{"far away", diagram.Point{X: 200, Y: 200}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, proj, ok := s.RelationshipAt(tt.p, 10)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, r.ID, got.ID)
				assert.Equal(t, 30.0, proj.Point.Y)
			}
		})
	}
}

func TestBendPoints(t *testing.T) {
	s := NewStore(history.New())
	a := box(t, s, "A", 0, 0, 100, 60)
	b := box(t, s, "B", 300, 0, 100, 60)
	r := link(t, s, a, b, diagram.Point{X: 200, Y: 30})

	idx, err := s.AddBendPoint(r.ID, diagram.Point{X: 250, Y: 35})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []diagram.Point{{X: 200, Y: 30}, {X: 250, Y: 30}}, s.FindRelationship(r.ID).BendPoints)

	idx, err = s.AddBendPoint(r.ID, diagram.Point{X: 150, Y: 25})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, diagram.Point{X: 150, Y: 30}, s.FindRelationship(r.ID).BendPoints[0])

	require.NoError(t, s.RemoveBendPoint(r.ID, 1))
	assert.Equal(t, []diagram.Point{{X: 150, Y: 30}, {X: 250, Y: 30}}, s.FindRelationship(r.ID).BendPoints)
	assert.Error(t, s.RemoveBendPoint(r.ID, 5))

	_, err = s.AddBendPoint("missing", diagram.Point{})
	assert.ErrorIs(t, err, ErrUnknownRelationship)
}

func TestAutoRoute(t *testing.T) {
	s := NewStore(history.New())
	a := box(t, s, "A", 0, 0, 100, 60)
	b := box(t, s, "B", 300, 100, 100, 60)
	r := diagram.NewRelationship(
		diagram.Endpoint{ID: a.ID, Border: diagram.BorderTop, Position: 0.1},
		diagram.Endpoint{ID: b.ID, Border: diagram.BorderTop, Position: 0.9},
	)
	r, err := s.AddRelationship(r)
	require.NoError(t, err)

	require.NoError(t, s.AutoRoute(r.ID))
	got := s.FindRelationship(r.ID)
	assert.Equal(t, diagram.BorderRight, got.Src.Border)
	assert.Equal(t, diagram.BorderLeft, got.Trg.Border)
	assert.Equal(t, []diagram.Point{{X: 200, Y: 30}, {X: 200, Y: 130}}, got.BendPoints)

	assert.ErrorIs(t, s.AutoRoute("missing"), ErrUnknownRelationship)
}

func TestDerivedGeometry(t *testing.T) {
	s := NewStore(history.New())
	a := box(t, s, "A", 0, 0, 100, 60)
	b := box(t, s, "B", 300, 0, 100, 60)
	r := link(t, s, a, b)

	assert.Equal(t, diagram.Point{X: 200, Y: 30}, s.LabelPosition(r))
	src, trg := s.MultiplicityPositions(r)
	assert.Equal(t, diagram.Point{X: 110, Y: 20}, src)
	assert.Equal(t, diagram.Point{X: 280, Y: 20}, trg)
	assert.Equal(t, diagram.Rect{X: 0, Y: 0, Width: 400, Height: 60}, s.Bounds())
}

func TestUndoRedoRestoresDiagram(t *testing.T) {
	s := NewStore(history.New())
	e := s.AddEntity("A", 0, 0)

	require.NoError(t, s.Undo())
	assert.Nil(t, s.FindShape(e.ID))
	assert.Empty(t, s.Selected(), "selection of a vanished shape is cleared")
	assert.True(t, s.CanRedo())

	require.NoError(t, s.Redo())
	assert.NotNil(t, s.FindShape(e.ID))
}

func TestExportImport(t *testing.T) {
	s := NewStore(history.New())
	box(t, s, "A", 0, 0, 100, 60)
	out, err := s.Export()
	require.NoError(t, err)

	other := NewStore(history.New())
	other.AddNote("scratch", 0, 0)
	require.NoError(t, other.Import(out))

	assert.Len(t, other.Shapes(), 1)
	assert.Equal(t, 1, other.History().Len())
	assert.False(t, other.CanUndo())

	assert.ErrorIs(t, other.Import("{"), diagram.ErrMalformedSnapshot)
	assert.Len(t, other.Shapes(), 1)
}

func TestDeleteSelected(t *testing.T) {
	s := NewStore(history.New())
	a := box(t, s, "A", 0, 0, 100, 60)
	b := box(t, s, "B", 300, 0, 100, 60)
	r := link(t, s, a, b)

	s.Select(r.ID)
	require.NoError(t, s.DeleteSelected())
	assert.Empty(t, s.Relationships())
	assert.Empty(t, s.Selected())

	s.Select(b.ID)
	require.NoError(t, s.DeleteSelected())
	assert.Nil(t, s.FindShape(b.ID))

	assert.NoError(t, s.DeleteSelected())
}
