package geometry

import (
	"math"

	"umlboard/diagram"
)

// ConnectionPoint maps a border and a relative position along it to an
// absolute point on the shape's boundary. Position 0 is the left end of a
// horizontal border and the top end of a vertical one. A nil shape yields
// the origin.
func ConnectionPoint(s diagram.Shape, border diagram.Border, position float64) diagram.Point {
	r, ok := diagram.RectOf(s)
	if !ok {
		return diagram.Point{}
	}
	return RectConnectionPoint(r, border, position)
}

// RectConnectionPoint is ConnectionPoint for a bare rectangle.
func RectConnectionPoint(r diagram.Rect, border diagram.Border, position float64) diagram.Point {
	p := Clamp(position, 0, 1)
	switch border {
	case diagram.BorderRight:
		return diagram.Point{X: r.X + r.Width, Y: r.Y + r.Height*p}
	case diagram.BorderBottom:
		return diagram.Point{X: r.X + r.Width*p, Y: r.Y + r.Height}
	case diagram.BorderLeft:
		return diagram.Point{X: r.X, Y: r.Y + r.Height*p}
	default:
		return diagram.Point{X: r.X + r.Width*p, Y: r.Y}
	}
}

// BorderRelativePosition is the inverse of RectConnectionPoint: it projects
// point onto the given border and returns its position in [0, 1]. Points
// beyond either end of the border clamp to that end.
func BorderRelativePosition(r diagram.Rect, border diagram.Border, point diagram.Point) float64 {
	if border.Horizontal() || !border.Valid() {
		if r.Width <= 0 {
			return 0.5
		}
		return Clamp((point.X-r.X)/r.Width, 0, 1)
	}
	if r.Height <= 0 {
		return 0.5
	}
	return Clamp((point.Y-r.Y)/r.Height, 0, 1)
}

// OrthogonalConstraint snaps raw onto the horizontal or vertical ray through
// fixed, whichever is closer to the direction of travel.
func OrthogonalConstraint(raw, fixed diagram.Point) diagram.Point {
	if IsHorizontal(fixed, raw) {
		return diagram.Point{X: raw.X, Y: fixed.Y}
	}
	return diagram.Point{X: fixed.X, Y: raw.Y}
}

// EndpointPoint resolves a relationship endpoint against a shape.
func EndpointPoint(s diagram.Shape, ep diagram.Endpoint) diagram.Point {
	return ConnectionPoint(s, ep.Border, ep.Position)
}

// BestConnectionPoints picks the pair of border midpoints, one on each
// rectangle, with the smallest Manhattan distance between them.
func BestConnectionPoints(a, b diagram.Rect) (diagram.Border, diagram.Border) {
	bestA, bestB := diagram.BorderTop, diagram.BorderTop
	best := math.Inf(1)
	for _, ba := range diagram.Borders {
		pa := RectConnectionPoint(a, ba, 0.5)
		for _, bb := range diagram.Borders {
			d := ManhattanDistance(pa, RectConnectionPoint(b, bb, 0.5))
			if d < best {
				bestA, bestB, best = ba, bb, d
			}
		}
	}
	return bestA, bestB
}

// NearestBorder returns the border of r closest to p.
func NearestBorder(r diagram.Rect, p diagram.Point) diagram.Border {
	best := diagram.BorderTop
	bestDist := Abs(p.Y - r.Y)
	candidates := []struct {
		b diagram.Border
		d float64
	}{
		{diagram.BorderRight, Abs(p.X - r.Right())},
		{diagram.BorderBottom, Abs(p.Y - r.Bottom())},
		{diagram.BorderLeft, Abs(p.X - r.X)},
	}
	for _, c := range candidates {
		if c.d < bestDist {
			best, bestDist = c.b, c.d
		}
	}
	return best
}

// Outward returns the unit direction leaving the shape through border.
func Outward(border diagram.Border) diagram.Point {
	switch border {
	case diagram.BorderRight:
		return diagram.Point{X: 1}
	case diagram.BorderBottom:
		return diagram.Point{Y: 1}
	case diagram.BorderLeft:
		return diagram.Point{X: -1}
	default:
		return diagram.Point{Y: -1}
	}
}

// MultiplicityOffset is where a multiplicity label sits relative to the
// connection point it annotates.
func MultiplicityOffset(border diagram.Border) diagram.Point {
	switch border {
	case diagram.BorderRight:
		return diagram.Point{X: 10, Y: -10}
	case diagram.BorderBottom:
		return diagram.Point{X: 10, Y: 15}
	case diagram.BorderLeft:
		return diagram.Point{X: -20, Y: -10}
	default:
		return diagram.Point{X: 10, Y: -10}
	}
}
