// Package snapping aligns a dragged shape or bend point with the edges of
// the other shapes and the bend points of relationships. It is UI agnostic:
// callers feed proposed coordinates in and render the returned guides.
package snapping

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"umlboard/diagram"
)

// DefaultThreshold is the snapping distance in diagram units.
const DefaultThreshold = 8

// Axis restricts which coordinates SnapPoint may change.
type Axis int

const (
	AxisBoth Axis = iota
	AxisX
	AxisY
)

// String returns the string representation of an Axis.
func (a Axis) String() string {
	switch a {
	case AxisBoth:
		return "both"
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "unknown"
	}
}

// Guide is an alignment hint segment to draw while a snap is active.
type Guide struct {
	X1, Y1, X2, Y2 float64
}

// Vertical reports whether the guide runs along the y axis.
func (g Guide) Vertical() bool { return g.X1 == g.X2 }

// Source provides the live geometry that snap lines are taken from. It is
// queried on every SnapPoint call so lines always reflect current state.
type Source interface {
	Shapes() []diagram.Shape
	Relationships() []*diagram.Relationship
}

// DiagramSource adapts a diagram accessor to Source.
type DiagramSource func() *diagram.Diagram

func (f DiagramSource) Shapes() []diagram.Shape {
	if d := f(); d != nil {
		return d.Shapes()
	}
	return nil
}

func (f DiagramSource) Relationships() []*diagram.Relationship {
	if d := f(); d != nil {
		return d.Relationships
	}
	return nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold sets the snapping distance. Non-positive values are ignored.
func WithThreshold(t float64) Option {
	return func(e *Engine) {
		if t > 0 {
			e.threshold = t
		}
	}
}

// WithBypass installs a check that disables snapping while it returns true,
// typically wired to a held modifier key.
func WithBypass(f func() bool) Option {
	return func(e *Engine) { e.bypass = f }
}

// WithLogger sets the logger used for session tracing.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// line is a candidate alignment coordinate and the element that produced it.
type line struct {
	value  float64
	source string
}

// Engine computes snapped coordinates for one gesture at a time.
type Engine struct {
	src       Source
	threshold float64
	bypass    func() bool
	logger    *log.Logger

	active bool
	box    diagram.Rect
	guides []Guide
}

// NewEngine creates an engine reading geometry from src.
func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{
		src:       src,
		threshold: DefaultThreshold,
		bypass:    func() bool { return false },
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the configured snapping distance.
func (e *Engine) Threshold() float64 { return e.threshold }

// Start begins a snapping session for a shape with the given geometry.
// Starting again while active replaces the previous session.
func (e *Engine) Start(box diagram.Rect) {
	e.active = true
	e.box = box
	e.guides = e.guides[:0]
	e.logger.Debug("snap session started", "x", box.X, "y", box.Y, "w", box.Width, "h", box.Height)
}

// Stop ends the session and clears the guides.
func (e *Engine) Stop() {
	if e.active {
		e.logger.Debug("snap session stopped")
	}
	e.active = false
	e.guides = e.guides[:0]
}

// Active reports whether a session is in progress.
func (e *Engine) Active() bool { return e.active }

// Guides returns the guides produced by the last SnapPoint call.
func (e *Engine) Guides() []Guide {
	return append([]Guide(nil), e.guides...)
}

// SnapPoint corrects a proposed top-left position of the session box.
//
// Lines owned by excludeID are ignored. Each candidate line is compared
// with both the leading and the trailing edge of the box on its axis and
// matches when strictly closer than the threshold. The closest match wins;
// on equal distance the later candidate is used. Every match adds a guide.
func (e *Engine) SnapPoint(raw diagram.Point, excludeID string, axis Axis) diagram.Point {
	e.guides = e.guides[:0]
	if !e.active || e.bypass() {
		return raw
	}

	ox, oy := raw.X, raw.Y
	out := raw
	w, h := e.box.Width, e.box.Height

	if axis == AxisBoth || axis == AxisX {
		if x, ok := e.match(e.verticalLines(excludeID), ox, w, func(v float64) Guide {
			return Guide{X1: v, Y1: oy, X2: v, Y2: oy + h}
		}); ok {
			out.X = x
		}
	}
	if axis == AxisBoth || axis == AxisY {
		if y, ok := e.match(e.horizontalLines(excludeID), oy, h, func(v float64) Guide {
			return Guide{X1: ox, Y1: v, X2: ox + w, Y2: v}
		}); ok {
			out.Y = y
		}
	}
	return out
}

func (e *Engine) match(lines []line, lead, extent float64, guide func(float64) Guide) (float64, bool) {
	best, bestDist := 0.0, math.Inf(1)
	found := false
	trail := lead + extent

	for _, l := range lines {
		if d := math.Abs(l.value - lead); d < e.threshold {
			e.guides = append(e.guides, guide(l.value))
			if d <= bestDist {
				best, bestDist, found = l.value, d, true
			}
		}
		if extent == 0 {
			continue
		}
		if d := math.Abs(l.value - trail); d < e.threshold {
			e.guides = append(e.guides, guide(l.value))
			if d <= bestDist {
				best, bestDist, found = l.value-extent, d, true
			}
		}
	}
	return best, found
}

func (e *Engine) verticalLines(excludeID string) []line {
	var lines []line
	for _, s := range e.src.Shapes() {
		b := s.Frame()
		if b == nil || (excludeID != "" && b.ID == excludeID) {
			continue
		}
		lines = append(lines, line{b.X, b.ID}, line{b.X + b.Width, b.ID})
	}
	for _, r := range e.src.Relationships() {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		for _, p := range r.BendPoints {
			lines = append(lines, line{p.X, r.ID})
		}
	}
	return lines
}

func (e *Engine) horizontalLines(excludeID string) []line {
	var lines []line
	for _, s := range e.src.Shapes() {
		b := s.Frame()
		if b == nil || (excludeID != "" && b.ID == excludeID) {
			continue
		}
		lines = append(lines, line{b.Y, b.ID}, line{b.Y + b.Height, b.ID})
	}
	for _, r := range e.src.Relationships() {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		for _, p := range r.BendPoints {
			lines = append(lines, line{p.Y, r.ID})
		}
	}
	return lines
}
