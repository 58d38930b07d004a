package geometry

import "umlboard/diagram"

// RouteMargin is how far the fallback route steps away from the source
// before turning when both L-shaped options are blocked.
const RouteMargin = 25

// Route is an automatically computed relationship path.
type Route struct {
	SrcBorder diagram.Border
	TrgBorder diagram.Border
	Points    []diagram.Point // including both end points
}

// Bends returns the interior points of the route.
func (r Route) Bends() []diagram.Point {
	if len(r.Points) <= 2 {
		return []diagram.Point{}
	}
	return append([]diagram.Point{}, r.Points[1:len(r.Points)-1]...)
}

// RoutePath computes an orthogonal path from a to b.
//
// Side by side shapes get an S route through the horizontal midpoint and
// stacked shapes one through the vertical midpoint. On an exact diagonal
// the closest pair of border midpoints is joined by one of two L bends,
// preferring the one that does not cross an obstacle; if both do, the
// path steps RouteMargin away from the source first.
func RoutePath(a, b diagram.Rect, obstacles []diagram.Rect) Route {
	ca, cb := a.Center(), b.Center()
	dx, dy := cb.X-ca.X, cb.Y-ca.Y

	switch {
	case Abs(dx) > Abs(dy):
		r := Route{SrcBorder: diagram.BorderRight, TrgBorder: diagram.BorderLeft}
		if dx < 0 {
			r.SrcBorder, r.TrgBorder = diagram.BorderLeft, diagram.BorderRight
		}
		start := RectConnectionPoint(a, r.SrcBorder, 0.5)
		end := RectConnectionPoint(b, r.TrgBorder, 0.5)
		midX := (start.X + end.X) / 2
		r.Points = []diagram.Point{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end}
		return r

	case Abs(dy) > Abs(dx):
		r := Route{SrcBorder: diagram.BorderBottom, TrgBorder: diagram.BorderTop}
		if dy < 0 {
			r.SrcBorder, r.TrgBorder = diagram.BorderTop, diagram.BorderBottom
		}
		start := RectConnectionPoint(a, r.SrcBorder, 0.5)
		end := RectConnectionPoint(b, r.TrgBorder, 0.5)
		midY := (start.Y + end.Y) / 2
		r.Points = []diagram.Point{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end}
		return r
	}

	sb, tb := BestConnectionPoints(a, b)
	start := RectConnectionPoint(a, sb, 0.5)
	end := RectConnectionPoint(b, tb, 0.5)
	r := Route{SrcBorder: sb, TrgBorder: tb}

	option1 := []diagram.Point{start, {X: end.X, Y: start.Y}, end}
	if !PathCrosses(option1, obstacles) {
		r.Points = option1
		return r
	}
	option2 := []diagram.Point{start, {X: start.X, Y: end.Y}, end}
	if !PathCrosses(option2, obstacles) {
		r.Points = option2
		return r
	}

	offset := float64(RouteMargin)
	if start.X >= end.X {
		offset = -offset
	}
	r.Points = []diagram.Point{start, {X: start.X + offset, Y: start.Y}, {X: start.X + offset, Y: end.Y}, end}
	return r
}

// PathCrosses reports whether any segment of path touches any obstacle.
func PathCrosses(path []diagram.Point, obstacles []diagram.Rect) bool {
	for _, o := range obstacles {
		for i := 0; i < len(path)-1; i++ {
			if SegmentIntersectsRect(path[i], path[i+1], o) {
				return true
			}
		}
	}
	return false
}

// SegmentIntersectsRect reports whether segment p1-p2 touches r, including
// when either end lies inside it.
func SegmentIntersectsRect(p1, p2 diagram.Point, r diagram.Rect) bool {
	if r.Contains(p1) || r.Contains(p2) {
		return true
	}
	c1 := diagram.Point{X: r.X, Y: r.Y}
	c2 := diagram.Point{X: r.Right(), Y: r.Y}
	c3 := diagram.Point{X: r.Right(), Y: r.Bottom()}
	c4 := diagram.Point{X: r.X, Y: r.Bottom()}
	return SegmentsIntersect(p1, p2, c1, c2) ||
		SegmentsIntersect(p1, p2, c2, c3) ||
		SegmentsIntersect(p1, p2, c3, c4) ||
		SegmentsIntersect(p1, p2, c4, c1)
}

// SegmentsIntersect reports whether segments p1-p2 and q1-q2 share a point.
func SegmentsIntersect(p1, p2, q1, q2 diagram.Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	return (o1 == 0 && onSegment(p1, q1, p2)) ||
		(o2 == 0 && onSegment(p1, q2, p2)) ||
		(o3 == 0 && onSegment(q1, p1, q2)) ||
		(o4 == 0 && onSegment(q1, p2, q2))
}

// orientation is 0 for collinear points, 1 for clockwise, 2 for counter-clockwise.
func orientation(p, q, r diagram.Point) int {
	v := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	switch {
	case v == 0:
		return 0
	case v > 0:
		return 1
	default:
		return 2
	}
}

// onSegment reports whether q lies within the bounding box of p-r.
func onSegment(p, q, r diagram.Point) bool {
	return q.X <= max(p.X, r.X) && q.X >= min(p.X, r.X) &&
		q.Y <= max(p.Y, r.Y) && q.Y >= min(p.Y, r.Y)
}
