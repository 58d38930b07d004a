package canvas

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// StringWidth returns the display width of a string in terminal cells.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most width cells, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// WrapText wraps text to fit within maxWidth using word boundaries.
// Words longer than a line are broken at the cell boundary. Explicit
// newlines are kept.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var line strings.Builder
		width := 0
		flush := func() {
			lines = append(lines, line.String())
			line.Reset()
			width = 0
		}

		for _, word := range strings.Fields(para) {
			for runewidth.StringWidth(word) > maxWidth {
				if width > 0 {
					flush()
				}
				head := runewidth.Truncate(word, maxWidth, "")
				if head == "" {
					break
				}
				lines = append(lines, head)
				word = word[len(head):]
			}
			w := runewidth.StringWidth(word)
			if w == 0 {
				continue
			}
			if width > 0 && width+1+w > maxWidth {
				flush()
			}
			if width > 0 {
				line.WriteByte(' ')
				width++
			}
			line.WriteString(word)
			width += w
		}
		flush()
	}
	return lines
}
