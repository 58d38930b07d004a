package validation

import (
	"fmt"
	"strings"
)

// LineError is a box-drawing defect in rendered output.
type LineError struct {
	X, Y    int
	Char    rune
	Message string
}

// String formats the error for test output.
func (e LineError) String() string {
	return fmt.Sprintf("(%d,%d) '%c': %s", e.X, e.Y, e.Char, e.Message)
}

type sides uint8

const (
	north sides = 1 << iota
	east
	south
	west
)

func (s sides) opposite() sides {
	switch s {
	case north:
		return south
	case south:
		return north
	case east:
		return west
	default:
		return east
	}
}

func (s sides) String() string {
	switch s {
	case north:
		return "north"
	case east:
		return "east"
	case south:
		return "south"
	default:
		return "west"
	}
}

// glyphs maps each line-drawing rune to the sides it connects.
var glyphs = map[rune]sides{
	'─': east | west, '━': east | west,
	'│': north | south, '┃': north | south,
	'┌': east | south, '╭': east | south,
	'┐': west | south, '╮': west | south,
	'└': north | east, '╰': north | east,
	'┘': north | west, '╯': north | west,
	'├': north | south | east,
	'┤': north | south | west,
	'┬': east | west | south,
	'┴': east | west | north,
	'┼': north | east | south | west,
	'▶': west, '▷': west,
	'◀': east, '◁': east,
	'▲': south, '△': south,
	'▼': north, '▽': north,
}

// CheckLines reports every place where a line-drawing character points
// at a neighbouring line-drawing character that does not point back.
// Spaces, text and unknown runes, ASCII punctuation included, are
// treated as open ends.
func CheckLines(rendered string) []LineError {
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	grid := make([][]rune, len(lines))
	for i, line := range lines {
		grid[i] = []rune(line)
	}
	at := func(x, y int) rune {
		if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
			return ' '
		}
		return grid[y][x]
	}

	var errs []LineError
	for y := range grid {
		for x, ch := range grid[y] {
			own, ok := glyphs[ch]
			if !ok {
				continue
			}
			for _, side := range []sides{north, east, south, west} {
				if own&side == 0 {
					continue
				}
				nx, ny := x, y
				switch side {
				case north:
					ny--
				case south:
					ny++
				case east:
					nx++
				case west:
					nx--
				}
				n := at(nx, ny)
				other, isLine := glyphs[n]
				if isLine && other&side.opposite() == 0 {
					errs = append(errs, LineError{
						X: x, Y: y, Char: ch,
						Message: fmt.Sprintf("cannot connect to %c on the %s", n, side),
					})
				}
			}
		}
	}
	return errs
}
