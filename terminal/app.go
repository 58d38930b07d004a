// Package terminal runs the diagram editor in a terminal using tcell.
//
// Every terminal cell stands for CellWidth x CellHeight screen units, so
// the editor's camera and gesture controllers work unchanged: a mouse
// report at cell (x, y) becomes a pointer event at screen position
// (x*CellWidth, y*CellHeight). The bottom row is a status line.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"umlboard/canvas"
	"umlboard/diagram"
	"umlboard/editor"
)

// Option configures an App.
type Option func(*App)

// WithCellSize sets the screen units covered by one terminal cell.
func WithCellSize(w, h float64) Option {
	return func(a *App) {
		if w > 0 && h > 0 {
			a.cellW, a.cellH = w, h
		}
	}
}

// WithLogger sets the logger for front end errors.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTitle sets the name shown in the status line.
func WithTitle(title string) Option {
	return func(a *App) { a.title = title }
}

// App connects a tcell screen to an editor.
type App struct {
	screen tcell.Screen
	ed     *editor.Editor
	ptr    pointer
	cursor diagram.Point // last pointer position in screen units

	cellW, cellH float64
	title        string
	status       string
	logger       *log.Logger
}

// New creates an App. The screen must already be initialised; the caller
// owns its lifecycle.
func New(screen tcell.Screen, ed *editor.Editor, opts ...Option) *App {
	a := &App{
		screen: screen,
		ed:     ed,
		cellW:  canvas.DefaultCellWidth,
		cellH:  canvas.DefaultCellHeight,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Status returns the message shown in the status line.
func (a *App) Status() string { return a.status }

// Run processes events until the user quits or ctx is cancelled. Pointer
// work is flushed and the screen redrawn whenever the event queue drains.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse(tcell.MouseMotionEvents)
	defer a.screen.DisableMouse()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
		case <-done:
		}
	}()

	a.Draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if intr, ok := ev.(*tcell.EventInterrupt); ok {
			if err, _ := intr.Data().(error); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}
		if !a.HandleEvent(ev) {
			return nil
		}
		if !a.screen.HasPendingEvent() {
			a.ed.Flush()
			a.Draw()
		}
	}
}

// HandleEvent applies one tcell event. It returns false when the user
// asked to quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return true
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := diagram.Point{X: float64(x) * a.cellW, Y: float64(y) * a.cellH}

	switch b := ev.Buttons(); {
	case b&tcell.WheelUp != 0:
		a.ed.Zoom(p, 1)
		return
	case b&tcell.WheelDown != 0:
		a.ed.Zoom(p, -1)
		return
	}

	a.cursor = p
	a.ed.Dispatch(a.ptr.translate(ev, p))
}

func (a *App) handleKey(tev *tcell.EventKey) bool {
	switch tev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return false
	}

	ev, ok := keyEvent(tev)
	if !ok {
		return true
	}
	ev.Screen = a.cursor

	if editor.Resolve(ev) == editor.CommandSave {
		a.save()
		return true
	}
	if a.ed.Bus.Busy() || ev.Mods.Has(editor.ModCtrl) || !a.command(ev) {
		a.ed.Dispatch(ev)
	}
	return true
}

// command runs the front end's own single key commands. It reports
// whether ev was one of them.
func (a *App) command(ev editor.Event) bool {
	at := a.ed.Camera.ToDiagram(a.cursor)
	store := a.ed.Store

	switch ev.Key {
	case editor.KeyTab:
		a.ed.ToggleMode()
		a.status = a.ed.Mode().String()
		return true
	case editor.KeyArrowLeft:
		a.ed.Camera.PanBy(diagram.Point{X: a.cellW})
		return true
	case editor.KeyArrowRight:
		a.ed.Camera.PanBy(diagram.Point{X: -a.cellW})
		return true
	case editor.KeyArrowUp:
		a.ed.Camera.PanBy(diagram.Point{Y: a.cellH})
		return true
	case editor.KeyArrowDown:
		a.ed.Camera.PanBy(diagram.Point{Y: -a.cellH})
		return true
	case editor.KeyRune:
	default:
		return false
	}

	switch r := ev.Rune; {
	case r == 'e':
		store.AddEntity("Entity", at.X, at.Y)
		a.status = "entity added"
	case r == 'n':
		store.AddNote("Note", at.X, at.Y)
		a.status = "note added"
	case r == 'u':
		store.AddEnumeration("Enumeration", at.X, at.Y)
		a.status = "enumeration added"
	case r >= '1' && int(r-'1') < len(diagram.RelationTypes):
		t := diagram.RelationTypes[r-'1']
		a.ed.Creator.SetRelationType(t)
		a.status = "relationship type " + string(t)
	case r == 'a':
		if err := store.AutoRoute(store.Selected()); err != nil {
			a.status = "auto-route: select a relationship"
		} else {
			a.status = "routed"
		}
	case r == 'f':
		w, h := a.screen.Size()
		a.ed.Camera.Fit(store.Bounds(), diagram.Point{X: float64(w) * a.cellW, Y: float64(h-1) * a.cellH}, a.cellW*2)
	case r == '+' || r == '=':
		a.ed.Zoom(a.center(), 1)
	case r == '-':
		a.ed.Zoom(a.center(), -1)
	default:
		return false
	}
	return true
}

func (a *App) save() {
	if err := a.ed.Save(); err != nil {
		a.logger.Error("save failed", "err", err)
		a.status = "save failed: " + err.Error()
		return
	}
	a.status = "saved"
}

func (a *App) center() diagram.Point {
	w, h := a.screen.Size()
	return diagram.Point{X: float64(w) * a.cellW / 2, Y: float64(h-1) * a.cellH / 2}
}

// Viewport returns the part of the diagram visible in a w x h cell area
// under the editor's camera.
func (a *App) Viewport(w, h int) canvas.Viewport {
	zoom := a.ed.Camera.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return canvas.Viewport{
		Origin:     a.ed.Camera.ToDiagram(diagram.Point{}),
		CellWidth:  a.cellW / zoom,
		CellHeight: a.cellH / zoom,
		Cols:       w,
		Rows:       h,
	}
}

// Scene collects what the editor currently shows.
func (a *App) Scene() canvas.Scene {
	s := canvas.Scene{
		Diagram:  a.ed.Store.Diagram(),
		Selected: a.ed.Store.Selected(),
		Guides:   a.ed.Guides(),
	}
	if a.ed.Creator.Active() {
		s.Preview = a.ed.Creator.PreviewPath()
	}
	if _, p, _, ok := a.ed.Hover.Preview(); ok {
		s.Hover = &p
	}
	return s
}

func (a *App) statusLine() string {
	current, total := a.ed.Store.History().Stats()
	line := fmt.Sprintf(" %s | %s | history %d/%d", a.ed.Mode(), a.ed.Creator.State(), current, total)
	if a.title != "" {
		line = " " + a.title + " |" + line
	}
	if a.status != "" {
		line += " | " + a.status
	}
	return line
}
