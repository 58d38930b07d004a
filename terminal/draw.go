package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"umlboard/canvas"
)

var styles = map[canvas.Style]tcell.Style{
	canvas.StyleDefault:      tcell.StyleDefault,
	canvas.StyleShape:        tcell.StyleDefault.Foreground(tcell.ColorWhite),
	canvas.StyleSelected:     tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	canvas.StyleText:         tcell.StyleDefault.Foreground(tcell.ColorSilver),
	canvas.StyleRelationship: tcell.StyleDefault.Foreground(tcell.ColorAqua),
	canvas.StyleDecoration:   tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true),
	canvas.StyleGuide:        tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Dim(true),
	canvas.StylePreview:      tcell.StyleDefault.Foreground(tcell.ColorGreen),
}

var statusStyle = tcell.StyleDefault.Reverse(true)

// Draw renders the editor state to the screen and shows it.
func (a *App) Draw() {
	a.screen.Clear()
	w, h := a.screen.Size()
	if w <= 0 || h <= 1 {
		a.screen.Show()
		return
	}

	m, err := canvas.Render(a.Scene(), a.Viewport(w, h-1))
	if err != nil {
		a.logger.Error("render", "err", err)
	} else {
		for y := 0; y < h-1; y++ {
			for x := 0; x < w; x++ {
				if m.Wide(x, y) {
					continue
				}
				r, style := m.Cell(x, y)
				a.screen.SetContent(x, y, r, nil, styles[style])
			}
		}
	}

	a.drawStatus(w, h-1)
	a.screen.Show()
}

func (a *App) drawStatus(w, y int) {
	line := runewidth.Truncate(a.statusLine(), w, "…")
	x := 0
	for _, r := range line {
		a.screen.SetContent(x, y, r, nil, statusStyle)
		x += runewidth.RuneWidth(r)
	}
	for ; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, statusStyle)
	}
}
