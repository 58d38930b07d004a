// Package diagram contains the fundamental types used throughout the umlboard editor.
package diagram

// Point represents a 2D coordinate in diagram space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Border is one of the four sides of a rectangular shape.
type Border string

const (
	BorderTop    Border = "top"
	BorderRight  Border = "right"
	BorderBottom Border = "bottom"
	BorderLeft   Border = "left"
)

// Borders lists every border in clockwise order starting at the top.
var Borders = []Border{BorderTop, BorderRight, BorderBottom, BorderLeft}

// Valid reports whether b is one of the four known borders.
func (b Border) Valid() bool {
	switch b {
	case BorderTop, BorderRight, BorderBottom, BorderLeft:
		return true
	}
	return false
}

// Horizontal reports whether the border runs along the x axis.
func (b Border) Horizontal() bool {
	return b == BorderTop || b == BorderBottom
}

// Opposite returns the opposite border.
func (b Border) Opposite() Border {
	switch b {
	case BorderTop:
		return BorderBottom
	case BorderRight:
		return BorderLeft
	case BorderBottom:
		return BorderTop
	case BorderLeft:
		return BorderRight
	default:
		return b
	}
}

// Rect represents a rectangular area with its origin at the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains checks if a point is inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() &&
		p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersects reports whether the two rectangles overlap with a non-empty area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Inflate grows the rectangle by m on every side.
func (r Rect) Inflate(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, Width: r.Width + 2*m, Height: r.Height + 2*m}
}
