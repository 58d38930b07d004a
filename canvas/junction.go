package canvas

// Sides is the set of directions a line-drawing cell connects to.
// Drawing a line only ever adds sides to a cell, so crossings, tees and
// corners fall out of the union instead of a pairwise merge table.
type Sides uint8

const (
	North Sides = 1 << iota
	East
	South
	West
)

// Has reports whether every side in o is set.
func (s Sides) Has(o Sides) bool { return s&o == o }

// sideGlyphs maps each combination of sides to its box-drawing rune.
var sideGlyphs = [16]rune{
	0:                          ' ',
	North:                      '│',
	South:                      '│',
	North | South:              '│',
	East:                       '─',
	West:                       '─',
	East | West:                '─',
	South | East:               '┌',
	South | West:               '┐',
	North | East:               '└',
	North | West:               '┘',
	North | South | East:       '├',
	North | South | West:       '┤',
	East | West | South:        '┬',
	East | West | North:        '┴',
	North | East | South | West: '┼',
}

// Glyph returns the box-drawing rune for s.
func (s Sides) Glyph() rune { return sideGlyphs[s&0x0f] }

// glyphSides is the inverse of sideGlyphs. A bare line rune maps to the
// full line rather than a single stub.
var glyphSides = func() map[rune]Sides {
	m := make(map[rune]Sides, len(sideGlyphs))
	for s, g := range sideGlyphs {
		if s != 0 && Sides(s) > m[g] {
			m[g] = Sides(s)
		}
	}
	return m
}()

// SidesOf is the inverse of Glyph. Runes that are not box-drawing
// characters have no sides.
func SidesOf(r rune) Sides { return glyphSides[r] }

// step returns the side of a cell facing the neighbour at (dx, dy).
func step(dx, dy int) Sides {
	switch {
	case dx > 0:
		return East
	case dx < 0:
		return West
	case dy > 0:
		return South
	default:
		return North
	}
}

// opposite returns the side facing back.
func (s Sides) opposite() Sides {
	switch s {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}
