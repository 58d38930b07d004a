package geometry

import (
	"math"

	"umlboard/diagram"
)

// Projection describes where a target point lands on a polyline.
type Projection struct {
	Point        diagram.Point
	Distance     float64
	SegmentIndex int     // segment i runs from points[i] to points[i+1]
	T            float64 // position along that segment, in [0, 1]
}

// ClosestPointOnSegment projects p onto the segment a-b, clamped to its ends.
func ClosestPointOnSegment(a, b, p diagram.Point) (diagram.Point, float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a, 0
	}
	t := Clamp(((p.X-a.X)*dx+(p.Y-a.Y)*dy)/lenSq, 0, 1)
	return diagram.Point{X: a.X + t*dx, Y: a.Y + t*dy}, t
}

// ClosestPointOnPolyline finds the closest point to target on any segment
// of the polyline. When two segments are equally close the later one
// wins, so a point near a corner is attributed to the outgoing segment.
// It returns false when the polyline has fewer than two points.
func ClosestPointOnPolyline(points []diagram.Point, target diagram.Point) (Projection, bool) {
	if len(points) < 2 {
		return Projection{}, false
	}

	best := Projection{Distance: math.Inf(1)}
	for i := 0; i < len(points)-1; i++ {
		p, t := ClosestPointOnSegment(points[i], points[i+1], target)
		d := Distance(p, target)
		if d <= best.Distance {
			best = Projection{Point: p, Distance: d, SegmentIndex: i, T: t}
		}
	}
	return best, true
}

// PathLength returns the total length of the polyline.
func PathLength(points []diagram.Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// PolylineMidpoint returns the point at half of the polyline's length,
// which is not necessarily a vertex.
func PolylineMidpoint(points []diagram.Point) diagram.Point {
	switch len(points) {
	case 0:
		return diagram.Point{}
	case 1:
		return points[0]
	}

	half := PathLength(points) / 2
	if half == 0 {
		return points[0]
	}

	walked := 0.0
	for i := 1; i < len(points); i++ {
		seg := Distance(points[i-1], points[i])
		if seg > 0 && walked+seg >= half {
			t := (half - walked) / seg
			a, b := points[i-1], points[i]
			return diagram.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
		}
		walked += seg
	}
	return points[len(points)-1]
}

// Path joins a start point, bend points and an end point into one polyline.
func Path(start diagram.Point, bends []diagram.Point, end diagram.Point) []diagram.Point {
	out := make([]diagram.Point, 0, len(bends)+2)
	out = append(out, start)
	out = append(out, bends...)
	return append(out, end)
}

// AdjustPathEndpoints moves the ends of a path to newStart and newEnd,
// spreading the displacement over the interior points linearly so the
// overall shape is kept.
func AdjustPathEndpoints(path []diagram.Point, newStart, newEnd diagram.Point) []diagram.Point {
	n := len(path)
	if n < 2 {
		return append([]diagram.Point{}, path...)
	}
	ds := newStart.Sub(path[0])
	de := newEnd.Sub(path[n-1])
	out := make([]diagram.Point, n)
	for i, p := range path {
		t := float64(i) / float64(n-1)
		out[i] = diagram.Point{
			X: p.X + ds.X*(1-t) + de.X*t,
			Y: p.Y + ds.Y*(1-t) + de.Y*t,
		}
	}
	return out
}
