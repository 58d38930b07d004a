package canvas

import (
	"fmt"
	"math"

	"umlboard/diagram"
	"umlboard/geometry"
	"umlboard/snapping"
)

// Default cell size in diagram units.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// Viewport maps diagram space onto the cell grid.
type Viewport struct {
	Origin     diagram.Point // diagram position of cell (0, 0)
	CellWidth  float64
	CellHeight float64
	Cols, Rows int
}

// FitViewport returns a viewport showing every shape of d with a margin
// of cells around it.
func FitViewport(d *diagram.Diagram, cellWidth, cellHeight float64, margin int) Viewport {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	if cellHeight <= 0 {
		cellHeight = DefaultCellHeight
	}
	var rects []diagram.Rect
	for _, s := range d.Shapes() {
		if r, ok := diagram.RectOf(s); ok {
			rects = append(rects, r)
		}
	}
	for _, r := range d.Relationships {
		for _, p := range r.BendPoints {
			rects = append(rects, diagram.Rect{X: p.X, Y: p.Y})
		}
	}
	b := geometry.RectsBounds(rects)
	return Viewport{
		Origin:     diagram.Point{X: b.X - float64(margin)*cellWidth, Y: b.Y - float64(margin)*cellHeight},
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		Cols:       int(math.Ceil(b.Width/cellWidth)) + 2*margin + 1,
		Rows:       int(math.Ceil(b.Height/cellHeight)) + 2*margin + 1,
	}
}

// Cell converts a diagram position to cell coordinates.
func (v Viewport) Cell(p diagram.Point) (int, int) {
	return int(math.Round((p.X - v.Origin.X) / v.CellWidth)),
		int(math.Round((p.Y - v.Origin.Y) / v.CellHeight))
}

// Point converts cell coordinates to the diagram position of the cell.
func (v Viewport) Point(x, y int) diagram.Point {
	return diagram.Point{
		X: v.Origin.X + float64(x)*v.CellWidth,
		Y: v.Origin.Y + float64(y)*v.CellHeight,
	}
}

// Scene is everything drawn in one frame.
type Scene struct {
	Diagram  *diagram.Diagram
	Selected string
	Guides   []snapping.Guide
	Preview  []diagram.Point // relationship being created, in diagram space
	Hover    *diagram.Point  // bend point that a click would insert
}

// Render draws the scene into a new matrix of the viewport's size.
func Render(s Scene, v Viewport) (*Matrix, error) {
	m, err := NewMatrix(v.Cols, v.Rows)
	if err != nil {
		return nil, fmt.Errorf("render %dx%d: %w", v.Cols, v.Rows, err)
	}
	if s.Diagram == nil {
		return m, nil
	}

	for _, g := range s.Guides {
		x1, y1 := v.Cell(diagram.Point{X: g.X1, Y: g.Y1})
		x2, y2 := v.Cell(diagram.Point{X: g.X2, Y: g.Y2})
		r := '┄'
		if g.Vertical() {
			r = '┆'
		}
		for x, y := x1, y1; ; x, y = x+sign(x2-x), y+sign(y2-y) {
			m.SetIfEmpty(x, y, r, StyleGuide)
			if x == x2 && y == y2 {
				break
			}
		}
	}

	for _, sh := range s.Diagram.Shapes() {
		drawShape(m, v, sh, sh.Frame().ID == s.Selected)
	}

	for _, r := range s.Diagram.Relationships {
		drawRelationship(m, v, s.Diagram, r, r.ID == s.Selected)
	}

	if len(s.Preview) > 1 {
		cells := cellPath(v, s.Preview)
		for i := 0; i+1 < len(cells); i++ {
			m.Line(cells[i][0], cells[i][1], cells[i+1][0], cells[i+1][1], StylePreview)
		}
	}
	if s.Hover != nil {
		x, y := v.Cell(*s.Hover)
		m.Set(x, y, '●', StylePreview)
	}
	return m, nil
}

func drawShape(m *Matrix, v Viewport, sh diagram.Shape, selected bool) {
	r := sh.Frame().Rect()
	x1, y1 := v.Cell(diagram.Point{X: r.X, Y: r.Y})
	x2, y2 := v.Cell(diagram.Point{X: r.Right(), Y: r.Bottom()})
	x2, y2 = max(x2, x1+2), max(y2, y1+2)

	style := StyleShape
	if selected {
		style = StyleSelected
	}
	m.Fill(x1, y1, x2, y2)
	m.Box(x1, y1, x2, y2, style)

	inner := x2 - x1 - 1
	row := y1 + 1
	text := func(s string) {
		if row < y2 {
			m.Text(x1+1, row, Truncate(s, inner), StyleText)
			row++
		}
	}
	separator := func() {
		if row < y2-1 {
			m.Line(x1, row, x2, row, style)
			row++
		}
	}

	switch s := sh.(type) {
	case *diagram.Entity:
		if s.Annotation != "" {
			text(center("«"+s.Annotation+"»", inner))
		}
		text(center(s.Name, inner))
		separator()
		for _, a := range s.Attributes {
			text(attributeLine(a))
		}
		if len(s.Methods) > 0 {
			separator()
			for _, meth := range s.Methods {
				text(methodLine(meth))
			}
		}
	case *diagram.Enumeration:
		text(center("«enumeration»", inner))
		text(center(s.Name, inner))
		separator()
		for _, val := range s.Values {
			text(val)
		}
	case *diagram.Note:
		for _, line := range WrapText(s.Content, inner) {
			text(line)
		}
	}
}

func attributeLine(a diagram.Attribute) string {
	s := a.Name
	if a.Type != "" {
		s += ": " + a.Type
	}
	if a.IsPrimaryKey {
		s = "PK " + s
	}
	return s
}

func methodLine(meth diagram.Method) string {
	vis := meth.Visibility
	if vis == "" {
		vis = "+"
	}
	s := vis + meth.Name + "()"
	if meth.Type != "" {
		s += ": " + meth.Type
	}
	return s
}

func center(s string, width int) string {
	pad := (width - StringWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return fmt.Sprintf("%*s%s", pad, "", s)
}

func drawRelationship(m *Matrix, v Viewport, d *diagram.Diagram, r *diagram.Relationship, selected bool) {
	src, trg := d.FindShape(r.Src.ID), d.FindShape(r.Trg.ID)
	if src == nil || trg == nil {
		return
	}
	start := geometry.EndpointPoint(src, r.Src)
	end := geometry.EndpointPoint(trg, r.Trg)
	cells := cellPath(v, geometry.Path(start, r.BendPoints, end))

	style := StyleRelationship
	if selected {
		style = StyleSelected
	}
	head, tail := decorations(r.Type)
	first, last := 0, len(cells)-1
	if len(cells) < 3 {
		head, tail = 0, 0
	}
	if head != 0 {
		first++
	}
	if tail != 0 {
		last--
	}
	for i := first; i < last; i++ {
		m.Line(cells[i][0], cells[i][1], cells[i+1][0], cells[i+1][1], style)
	}

	if head != 0 {
		m.Set(cells[1][0], cells[1][1], head, StyleDecoration)
	}
	if tail != 0 {
		n := len(cells)
		dir := step(cells[n-1][0]-cells[n-2][0], cells[n-1][1]-cells[n-2][1])
		m.Set(cells[n-2][0], cells[n-2][1], arrow(tail, dir), StyleDecoration)
	}

	if r.Name != "" {
		x, y := v.Cell(geometry.PolylineMidpoint(geometry.Path(start, r.BendPoints, end)))
		m.Text(x-StringWidth(r.Name)/2, y-1, r.Name, StyleText)
	}
	multiplicity(m, v, start, r.Src)
	multiplicity(m, v, end, r.Trg)
}

// multiplicity writes an endpoint's multiplicity beside its connection
// point. On a left border the text ends at the offset instead of starting
// there so it stays clear of the shape.
func multiplicity(m *Matrix, v Viewport, at diagram.Point, ep diagram.Endpoint) {
	if ep.Mult == "" {
		return
	}
	x, y := v.Cell(at.Add(geometry.MultiplicityOffset(ep.Border)))
	if ep.Border == diagram.BorderLeft {
		x -= StringWidth(ep.Mult) - 1
	}
	m.Text(x, y, ep.Mult, StyleText)
}

// decorations returns the marker drawn next to the source and the arrow
// family drawn next to the target.
func decorations(t diagram.RelationType) (head, tail rune) {
	switch t {
	case diagram.Composition:
		return '◆', 0
	case diagram.Aggregation:
		return '◇', 0
	case diagram.Inheritance:
		return 0, '▷'
	case diagram.Dependency:
		return 0, '▶'
	}
	return 0, 0
}

// arrow orients an arrow family along the direction of travel.
func arrow(family rune, dir Sides) rune {
	hollow := family == '▷'
	switch dir {
	case West:
		if hollow {
			return '◁'
		}
		return '◀'
	case North:
		if hollow {
			return '△'
		}
		return '▲'
	case South:
		if hollow {
			return '▽'
		}
		return '▼'
	}
	return family
}

// cellPath converts a diagram polyline into a list of cells where every
// pair of neighbours is joined by one orthogonal leg. Diagonal segments
// become an L turning at the target's column.
func cellPath(v Viewport, points []diagram.Point) [][2]int {
	var out [][2]int
	add := func(x, y int) {
		if n := len(out); n > 0 && out[n-1] == [2]int{x, y} {
			return
		}
		out = append(out, [2]int{x, y})
	}
	for i, p := range points {
		x, y := v.Cell(p)
		if i > 0 {
			prev := out[len(out)-1]
			if prev[0] != x && prev[1] != y {
				add(x, prev[1])
			}
		}
		add(x, y)
	}
	// Expand to unit steps so decorations land next to the end cells.
	var steps [][2]int
	for i, c := range out {
		if i == 0 {
			steps = append(steps, c)
			continue
		}
		p := steps[len(steps)-1]
		for p != c {
			p = [2]int{p[0] + sign(c[0]-p[0]), p[1] + sign(c[1]-p[1])}
			steps = append(steps, p)
		}
	}
	return steps
}
