package snapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umlboard/diagram"
)

func testDiagram() *diagram.Diagram {
	d := diagram.New()
	d.Entities = append(d.Entities,
		&diagram.Entity{Box: diagram.Box{ID: "a", X: 100, Y: 0, Width: 100, Height: 60}},
		&diagram.Entity{Box: diagram.Box{ID: "moving", X: 400, Y: 300, Width: 50, Height: 40}},
	)
	return d
}

func newTestEngine(d *diagram.Diagram, opts ...Option) *Engine {
	return NewEngine(DiagramSource(func() *diagram.Diagram { return d }), opts...)
}

func TestSnapPointEdges(t *testing.T) {
	d := testDiagram()
	e := newTestEngine(d)
	e.Start(diagram.Rect{X: 400, Y: 300, Width: 50, Height: 40})

	tests := []struct {
		name string
		raw  diagram.Point
		want diagram.Point
	}{
		{"leading edge snaps", diagram.Point{X: 104, Y: 300}, diagram.Point{X: 100, Y: 300}},
		{"trailing edge snaps", diagram.Point{X: 46, Y: 300}, diagram.Point{X: 50, Y: 300}},
		{"beyond threshold", diagram.Point{X: 120, Y: 300}, diagram.Point{X: 120, Y: 300}},
		{"exactly at threshold", diagram.Point{X: 108, Y: 300}, diagram.Point{X: 108, Y: 300}},
		{"leading edge onto right side", diagram.Point{X: 203, Y: 300}, diagram.Point{X: 200, Y: 300}},
		{"top edge snaps", diagram.Point{X: 500, Y: 63}, diagram.Point{X: 500, Y: 60}},
		{"bottom edge snaps", diagram.Point{X: 500, Y: -37}, diagram.Point{X: 500, Y: -40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.SnapPoint(tt.raw, "moving", AxisBoth))
		})
	}
}

func TestSnapPointExcludesOwnEdges(t *testing.T) {
	d := testDiagram()
	e := newTestEngine(d)
	e.Start(diagram.Rect{X: 400, Y: 300, Width: 50, Height: 40})

	// 403 is within reach of the moving shape's own left edge
	assert.Equal(t, diagram.Point{X: 403, Y: 500}, e.SnapPoint(diagram.Point{X: 403, Y: 500}, "moving", AxisBoth))
	assert.Equal(t, diagram.Point{X: 400, Y: 500}, e.SnapPoint(diagram.Point{X: 403, Y: 500}, "", AxisBoth))
}

func TestSnapPointClosestWins(t *testing.T) {
	d := testDiagram()
	d.Notes = append(d.Notes, &diagram.Note{Box: diagram.Box{ID: "n", X: 106, Y: 900, Width: 10, Height: 10}})
	e := newTestEngine(d)
	e.Start(diagram.Rect{Width: 50, Height: 40})

	assert.Equal(t, 106.0, e.SnapPoint(diagram.Point{X: 104, Y: 500}, "moving", AxisX).X)
	assert.Equal(t, 100.0, e.SnapPoint(diagram.Point{X: 101, Y: 500}, "moving", AxisX).X)
}

func TestSnapPointAxis(t *testing.T) {
	d := testDiagram()
	e := newTestEngine(d)
	e.Start(diagram.Rect{Width: 50, Height: 40})

	raw := diagram.Point{X: 104, Y: 62}
	assert.Equal(t, diagram.Point{X: 100, Y: 60}, e.SnapPoint(raw, "moving", AxisBoth))
	assert.Equal(t, diagram.Point{X: 100, Y: 62}, e.SnapPoint(raw, "moving", AxisX))
	assert.Equal(t, diagram.Point{X: 104, Y: 60}, e.SnapPoint(raw, "moving", AxisY))
}

func TestSnapPointBendPoints(t *testing.T) {
	d := testDiagram()
	d.Relationships = append(d.Relationships, &diagram.Relationship{
		ID:         "r",
		BendPoints: []diagram.Point{{X: 700, Y: 800}},
	})
	e := newTestEngine(d)

	// A bend point drag is a zero sized box
	e.Start(diagram.Rect{})
	assert.Equal(t, diagram.Point{X: 700, Y: 800}, e.SnapPoint(diagram.Point{X: 695, Y: 805}, "other", AxisBoth))
	assert.Len(t, e.Guides(), 2)

	// The relationship's own bend points are excluded by its id
	assert.Equal(t, diagram.Point{X: 695, Y: 805}, e.SnapPoint(diagram.Point{X: 695, Y: 805}, "r", AxisBoth))
}

func TestSnapPointGuides(t *testing.T) {
	d := testDiagram()
	e := newTestEngine(d)
	e.Start(diagram.Rect{Width: 50, Height: 40})

	e.SnapPoint(diagram.Point{X: 104, Y: 500}, "moving", AxisBoth)
	guides := e.Guides()
	require.Len(t, guides, 1)
	assert.Equal(t, Guide{X1: 100, Y1: 500, X2: 100, Y2: 540}, guides[0])
	assert.True(t, guides[0].Vertical())

	e.SnapPoint(diagram.Point{X: 500, Y: 63}, "moving", AxisBoth)
	guides = e.Guides()
	require.Len(t, guides, 1)
	assert.Equal(t, Guide{X1: 500, Y1: 60, X2: 550, Y2: 60}, guides[0])
	assert.False(t, guides[0].Vertical())

	// Guides are rebuilt on every call
	e.SnapPoint(diagram.Point{X: 900, Y: 900}, "moving", AxisBoth)
	assert.Empty(t, e.Guides())
}

func TestSnapPointBypassAndInactive(t *testing.T) {
	d := testDiagram()
	held := false
	e := newTestEngine(d, WithBypass(func() bool { return held }))
	raw := diagram.Point{X: 104, Y: 500}

	// No session yet
	assert.Equal(t, raw, e.SnapPoint(raw, "moving", AxisBoth))
	assert.False(t, e.Active())

	e.Start(diagram.Rect{Width: 50, Height: 40})
	assert.True(t, e.Active())
	assert.Equal(t, diagram.Point{X: 100, Y: 500}, e.SnapPoint(raw, "moving", AxisBoth))
	assert.NotEmpty(t, e.Guides())

	held = true
	assert.Equal(t, raw, e.SnapPoint(raw, "moving", AxisBoth))
	assert.Empty(t, e.Guides())

	held = false
	e.SnapPoint(raw, "moving", AxisBoth)
	e.Stop()
	assert.False(t, e.Active())
	assert.Empty(t, e.Guides())
	assert.Equal(t, raw, e.SnapPoint(raw, "moving", AxisBoth))
}

func TestSnapPointReadsLiveGeometry(t *testing.T) {
	d := testDiagram()
	e := newTestEngine(d)
	e.Start(diagram.Rect{Width: 50, Height: 40})

	assert.Equal(t, 100.0, e.SnapPoint(diagram.Point{X: 104, Y: 500}, "moving", AxisX).X)

	d.Entities[0].X = 300
	assert.Equal(t, 104.0, e.SnapPoint(diagram.Point{X: 104, Y: 500}, "moving", AxisX).X)
}

func TestWithThreshold(t *testing.T) {
	d := testDiagram()
	e := newTestEngine(d, WithThreshold(25), WithLogger(nil))
	assert.Equal(t, 25.0, e.Threshold())

	e.Start(diagram.Rect{Width: 50, Height: 40})
	assert.Equal(t, 100.0, e.SnapPoint(diagram.Point{X: 120, Y: 500}, "moving", AxisX).X)

	assert.Equal(t, float64(DefaultThreshold), newTestEngine(d, WithThreshold(-1)).Threshold())
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "both", AxisBoth.String())
	assert.Equal(t, "x", AxisX.String())
	assert.Equal(t, "y", AxisY.String())
	assert.Equal(t, "unknown", Axis(9).String())
}
