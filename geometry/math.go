// Package geometry provides the pure coordinate math behind connection
// points, snapping and relationship routing. Nothing in here holds state.
package geometry

import (
	"math"

	"umlboard/diagram"
)

// Abs returns the absolute value of x.
func Abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b diagram.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// ManhattanDistance calculates the Manhattan distance between two points.
func ManhattanDistance(a, b diagram.Point) float64 {
	return Abs(b.X-a.X) + Abs(b.Y-a.Y)
}

// IsHorizontal returns true if the line from a to b is more horizontal than vertical.
func IsHorizontal(a, b diagram.Point) bool {
	return Abs(b.X-a.X) > Abs(b.Y-a.Y)
}

// IsVertical returns true if the line from a to b is more vertical than horizontal.
func IsVertical(a, b diagram.Point) bool {
	return Abs(b.Y-a.Y) > Abs(b.X-a.X)
}

// ApproxEqual compares two points with a small tolerance.
func ApproxEqual(a, b diagram.Point) bool {
	const eps = 1e-9
	return Abs(a.X-b.X) < eps && Abs(a.Y-b.Y) < eps
}
