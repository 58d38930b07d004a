package editor

import (
	"math"

	"umlboard/diagram"
	"umlboard/geometry"
)

// Zoom limits and the factor applied per wheel step.
const (
	MinZoom    = 0.5
	MaxZoom    = 3.0
	ZoomFactor = 1.1
)

// Camera maps between screen and diagram coordinates.
// screen = diagram*Zoom + Pan
type Camera struct {
	Pan  diagram.Point
	Zoom float64
}

// NewCamera returns an identity camera.
func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

// ToDiagram converts a screen position to diagram space.
func (c *Camera) ToDiagram(screen diagram.Point) diagram.Point {
	return screen.Sub(c.Pan).Scale(1 / c.zoom())
}

// ToScreen converts a diagram position to screen space.
func (c *Camera) ToScreen(p diagram.Point) diagram.Point {
	return p.Scale(c.zoom()).Add(c.Pan)
}

// PanBy shifts the view by a screen space delta.
func (c *Camera) PanBy(delta diagram.Point) {
	c.Pan = c.Pan.Add(delta)
}

// ZoomAt zooms by ZoomFactor per step around a screen position, keeping
// the diagram point under it fixed. Positive steps zoom in.
func (c *Camera) ZoomAt(screen diagram.Point, steps int) {
	old := c.zoom()
	z := geometry.Clamp(old*math.Pow(ZoomFactor, float64(steps)), MinZoom, MaxZoom)
	anchor := c.ToDiagram(screen)
	c.Zoom = z
	c.Pan = screen.Sub(anchor.Scale(z))
}

// SetZoom sets the zoom level around the origin of the screen.
func (c *Camera) SetZoom(z float64) {
	c.Zoom = geometry.Clamp(z, MinZoom, MaxZoom)
}

// Fit centers r in a viewport of the given size, zooming as far as the
// limits allow so that r is fully visible with padding on every side.
func (c *Camera) Fit(r diagram.Rect, viewport diagram.Point, padding float64) {
	r = r.Inflate(padding)
	if r.Width <= 0 || r.Height <= 0 || viewport.X <= 0 || viewport.Y <= 0 {
		return
	}
	z := geometry.Clamp(math.Min(viewport.X/r.Width, viewport.Y/r.Height), MinZoom, MaxZoom)
	c.Zoom = z
	center := r.Center().Scale(z)
	c.Pan = viewport.Scale(0.5).Sub(center)
}

func (c *Camera) zoom() float64 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}
