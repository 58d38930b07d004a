// Package canvas rasterises diagrams onto a grid of terminal cells.
package canvas

import (
	"errors"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Common errors
var (
	ErrInvalidSize = errors.New("invalid canvas size")
)

// Style classifies a cell so front ends can colour it.
type Style uint8

const (
	StyleDefault Style = iota
	StyleShape
	StyleSelected
	StyleText
	StyleRelationship
	StyleDecoration
	StyleGuide
	StylePreview
)

// continuation marks the right half of a wide rune.
const continuation = '\x00'

type cell struct {
	sides Sides
	r     rune
	style Style
}

// Matrix is a grid of cells. Lines are stored as connection sides and
// turned into box-drawing runes on read; text and decorations are stored
// as runes and win over lines.
//
// Coordinates are in cells with the origin at the top-left. Writes outside
// the grid are clipped.
type Matrix struct {
	cells  [][]cell
	width  int
	height int
}

// NewMatrix creates a blank matrix.
func NewMatrix(width, height int) (*Matrix, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	cells := make([][]cell, height)
	for y := range cells {
		cells[y] = make([]cell, width)
	}
	return &Matrix{cells: cells, width: width, height: height}, nil
}

// Size returns the width and height of the matrix.
func (m *Matrix) Size() (width, height int) {
	return m.width, m.height
}

func (m *Matrix) in(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// Get returns the rune shown at (x, y), or a space outside the grid.
func (m *Matrix) Get(x, y int) rune {
	r, _ := m.Cell(x, y)
	return r
}

// Cell returns the rune and style at (x, y).
func (m *Matrix) Cell(x, y int) (rune, Style) {
	if !m.in(x, y) {
		return ' ', StyleDefault
	}
	c := m.cells[y][x]
	switch {
	case c.r == continuation:
		return ' ', c.style
	case c.r != 0:
		return c.r, c.style
	default:
		return c.sides.Glyph(), c.style
	}
}

// Wide reports whether (x, y) is the right half of a wide rune.
func (m *Matrix) Wide(x, y int) bool {
	return m.in(x, y) && m.cells[y][x].r == continuation
}

// Set places a rune, replacing any line at that cell.
func (m *Matrix) Set(x, y int, r rune, style Style) {
	if !m.in(x, y) {
		return
	}
	m.cells[y][x] = cell{r: r, style: style}
}

// SetIfEmpty places a rune only on a blank cell.
func (m *Matrix) SetIfEmpty(x, y int, r rune, style Style) {
	if !m.in(x, y) {
		return
	}
	if c := m.cells[y][x]; c.r == 0 && c.sides == 0 {
		m.cells[y][x] = cell{r: r, style: style}
	}
}

// Connect adds sides to the line at (x, y). The style is only replaced
// when the cell was blank or style is not the default.
func (m *Matrix) Connect(x, y int, s Sides, style Style) {
	if !m.in(x, y) {
		return
	}
	c := &m.cells[y][x]
	if c.r == 0 && (c.sides == 0 || style != StyleDefault) {
		c.style = style
	}
	c.sides |= s
}

// Line draws an orthogonal segment between two cells. A segment that is
// neither horizontal nor vertical goes horizontally first.
func (m *Matrix) Line(x1, y1, x2, y2 int, style Style) {
	if y1 != y2 && x1 != x2 {
		m.Line(x1, y1, x2, y1, style)
		m.Line(x2, y1, x2, y2, style)
		return
	}
	if x1 == x2 && y1 == y2 {
		return
	}
	dx, dy := sign(x2-x1), sign(y2-y1)
	fwd := step(dx, dy)
	back := fwd.opposite()
	for x, y := x1, y1; ; x, y = x+dx, y+dy {
		var s Sides
		if x != x1 || y != y1 {
			s |= back
		}
		if x != x2 || y != y2 {
			s |= fwd
		}
		m.Connect(x, y, s, style)
		if x == x2 && y == y2 {
			return
		}
	}
}

// Box draws a rectangle outline with corners at (x1, y1) and (x2, y2).
func (m *Matrix) Box(x1, y1, x2, y2 int, style Style) {
	m.Line(x1, y1, x2, y1, style)
	m.Line(x2, y1, x2, y2, style)
	m.Line(x2, y2, x1, y2, style)
	m.Line(x1, y2, x1, y1, style)
}

// Fill clears the interior of a rectangle so shapes hide what is behind.
func (m *Matrix) Fill(x1, y1, x2, y2 int) {
	for y := max(y1, 0); y <= min(y2, m.height-1); y++ {
		for x := max(x1, 0); x <= min(x2, m.width-1); x++ {
			m.cells[y][x] = cell{}
		}
	}
}

// Text writes s starting at (x, y) and returns the number of cells used.
// Wide runes take two cells; zero width runes are dropped.
func (m *Matrix) Text(x, y int, s string, style Style) int {
	start := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if w == 2 && x+1 >= m.width {
			break
		}
		m.Set(x, y, r, style)
		if w == 2 {
			m.Set(x+1, y, continuation, style)
		}
		x += w
	}
	return x - start
}

// String returns the grid as text with trailing spaces trimmed.
func (m *Matrix) String() string {
	var sb strings.Builder
	sb.Grow(m.height * (m.width + 1))
	for y := 0; y < m.height; y++ {
		var line strings.Builder
		for x := 0; x < m.width; x++ {
			if m.Wide(x, y) {
				continue
			}
			line.WriteRune(m.Get(x, y))
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		if y < m.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
