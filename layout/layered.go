// Package layout positions shapes that arrive without coordinates, such
// as diagrams read by the importer.
package layout

import (
	"math"
	"sort"

	"umlboard/diagram"
	"umlboard/geometry"
)

// Text metrics used to size shapes to their content, matching the
// terminal's default cell.
const (
	charWidth = 8
	rowHeight = 16
)

// Layered arranges shapes left to right in layers by their distance from
// the sources of relationships. Unconnected groups of shapes are placed
// side by side. Layers taller than MaxPerColumn are split into several
// columns.
type Layered struct {
	HorizontalSpacing float64
	VerticalSpacing   float64
	MaxPerColumn      int
}

// NewLayered creates a Layered layout with default settings.
func NewLayered() *Layered {
	return &Layered{
		HorizontalSpacing: 120,
		VerticalSpacing:   48,
		MaxPerColumn:      6,
	}
}

// Apply sizes every shape to its content, positions it, and attaches
// every relationship to the facing borders of its shapes. Bend points are
// cleared.
func (l *Layered) Apply(d *diagram.Diagram) {
	shapes := d.Shapes()
	if len(shapes) == 0 {
		return
	}
	for _, s := range shapes {
		Fit(s)
	}

	index := make(map[string]int, len(shapes))
	for i, s := range shapes {
		index[s.Frame().ID] = i
	}
	outgoing := make([][]int, len(shapes))
	adjacent := make([][]int, len(shapes))
	for _, r := range d.Relationships {
		from, okFrom := index[r.Src.ID]
		to, okTo := index[r.Trg.ID]
		if !okFrom || !okTo || from == to {
			continue
		}
		outgoing[from] = append(outgoing[from], to)
		adjacent[from] = append(adjacent[from], to)
		adjacent[to] = append(adjacent[to], from)
	}

	x := 0.0
	for _, component := range components(len(shapes), adjacent) {
		layers := assignLayers(component, outgoing)
		x = l.place(shapes, layers, x) + l.HorizontalSpacing
	}

	for _, r := range d.Relationships {
		l.attach(d, r)
	}
}

// place positions the layers of one component starting at x and returns
// the right edge of the rightmost shape.
func (l *Layered) place(shapes []diagram.Shape, layers [][]int, x float64) float64 {
	perColumn := l.MaxPerColumn
	if perColumn < 1 {
		perColumn = 1
	}
	right := x
	for _, layer := range layers {
		for start := 0; start < len(layer); start += perColumn {
			end := min(start+perColumn, len(layer))
			y, width := 0.0, 0.0
			for _, i := range layer[start:end] {
				b := shapes[i].Frame()
				b.X, b.Y = x, y
				y += b.Height + l.VerticalSpacing
				width = math.Max(width, b.Width)
			}
			right = x + width
			x = right + l.HorizontalSpacing
		}
	}
	return right
}

func (l *Layered) attach(d *diagram.Diagram, r *diagram.Relationship) {
	src, okSrc := diagram.RectOf(d.FindShape(r.Src.ID))
	trg, okTrg := diagram.RectOf(d.FindShape(r.Trg.ID))
	if !okSrc || !okTrg {
		return
	}
	r.BendPoints = []diagram.Point{}
	if r.Src.ID == r.Trg.ID {
		r.Src.Border, r.Src.Position = diagram.BorderRight, 0.3
		r.Trg.Border, r.Trg.Position = diagram.BorderRight, 0.7
		return
	}
	r.Src.Border, r.Trg.Border = geometry.BestConnectionPoints(src, trg)
	r.Src.Position, r.Trg.Position = 0.5, 0.5
}

// components groups shape indexes into connected components, in order of
// their first member.
func components(n int, adjacent [][]int) [][]int {
	seen := make([]bool, n)
	var out [][]int
	for start := 0; start < n; start++ {
		if seen[start] {
			continue
		}
		var comp []int
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, i)
			for _, j := range adjacent[i] {
				if !seen[j] {
					seen[j] = true
					stack = append(stack, j)
				}
			}
		}
		sort.Ints(comp) // Sort for determinism
		out = append(out, comp)
	}
	return out
}

// assignLayers gives every shape the length of the longest chain of
// relationships leading to it. Cycles stop growing once a chain is as long
// as the component.
func assignLayers(component []int, outgoing [][]int) [][]int {
	layer := make(map[int]int, len(component))
	for _, i := range component {
		layer[i] = 0
	}
	limit := len(component) - 1
	for changed, pass := true, 0; changed && pass < len(component); pass++ {
		changed = false
		for _, from := range component {
			for _, to := range outgoing[from] {
				if next := layer[from] + 1; next <= limit && next > layer[to] {
					layer[to] = next
					changed = true
				}
			}
		}
	}

	depth := 0
	for _, v := range layer {
		depth = max(depth, v)
	}
	layers := make([][]int, depth+1)
	for _, i := range component {
		layers[layer[i]] = append(layers[layer[i]], i)
	}
	return layers
}

// Fit grows a shape so that its text fits when drawn with the terminal's
// default cell size. Shapes never shrink below their default size.
func Fit(s diagram.Shape) {
	var lines []string
	rows := 0
	switch v := s.(type) {
	case *diagram.Entity:
		lines = append(lines, v.Name)
		rows = 1 + len(v.Attributes) + 1 // name, attributes, separator
		if v.Annotation != "" {
			lines = append(lines, "«"+v.Annotation+"»")
			rows++
		}
		for _, a := range v.Attributes {
			lines = append(lines, "PK "+a.Name+": "+a.Type)
		}
		if len(v.Methods) > 0 {
			rows += 1 + len(v.Methods)
			for _, m := range v.Methods {
				lines = append(lines, "+"+m.Name+"(): "+m.Type)
			}
		}
	case *diagram.Enumeration:
		lines = append(append(lines, "«enumeration»", v.Name), v.Values...)
		rows = 3 + len(v.Values)
	case *diagram.Note:
		return
	}

	widest := 0
	for _, line := range lines {
		widest = max(widest, len([]rune(line)))
	}
	b := s.Frame()
	b.Width = math.Max(b.Width, float64(widest+4)*charWidth)
	b.Height = math.Max(b.Height, float64(rows+2)*rowHeight)
}
