package geometry

import (
	"math"

	"umlboard/diagram"
)

// Fallback canvas used when there is nothing to measure.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
	MinExtent     = 10
)

// BoundingBox returns the smallest rectangle enclosing every shape. Nil
// shapes are skipped. With nothing to measure it returns an 800x600 box
// at the origin. The result is never smaller than 10x10.
func BoundingBox(shapes []diagram.Shape) diagram.Rect {
	rects := make([]diagram.Rect, 0, len(shapes))
	for _, s := range shapes {
		if r, ok := diagram.RectOf(s); ok {
			rects = append(rects, r)
		}
	}
	return RectsBounds(rects)
}

// RectsBounds is BoundingBox over bare rectangles.
func RectsBounds(rects []diagram.Rect) diagram.Rect {
	if len(rects) == 0 {
		return diagram.Rect{Width: DefaultWidth, Height: DefaultHeight}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range rects {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.Right())
		maxY = math.Max(maxY, r.Bottom())
	}
	return diagram.Rect{
		X:      minX,
		Y:      minY,
		Width:  math.Max(maxX-minX, MinExtent),
		Height: math.Max(maxY-minY, MinExtent),
	}
}

// PointsBounds returns the rectangle spanned by a set of points.
func PointsBounds(points []diagram.Point) diagram.Rect {
	rects := make([]diagram.Rect, len(points))
	for i, p := range points {
		rects[i] = diagram.Rect{X: p.X, Y: p.Y}
	}
	return RectsBounds(rects)
}
