package terminal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umlboard/diagram"
	"umlboard/editor"
	"umlboard/history"
)

func newApp(t *testing.T, opts ...editor.Option) (*App, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	s.SetSize(80, 25)
	t.Cleanup(s.Fini)
	return New(s, editor.New(history.New(), opts...)), s
}

func rows(s tcell.SimulationScreen) []string {
	cells, w, h := s.GetContents()
	out := make([]string, h)
	for y := 0; y < h; y++ {
		var sb strings.Builder
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) > 0 {
				sb.WriteRune(c.Runes[0])
			}
		}
		out[y] = sb.String()
	}
	return out
}

func mouse(a *App, x, y int, b tcell.ButtonMask, mods tcell.ModMask) {
	a.HandleEvent(tcell.NewEventMouse(x, y, b, mods))
}

func click(a *App, x, y int) {
	mouse(a, x, y, tcell.ButtonPrimary, tcell.ModNone)
	mouse(a, x, y, tcell.ButtonNone, tcell.ModNone)
}

func press(a *App, k tcell.Key, r rune, mods tcell.ModMask) bool {
	return a.HandleEvent(tcell.NewEventKey(k, r, mods))
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want editor.Event
		ok   bool
	}{
		{
			name: "rune",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'e', tcell.ModNone),
			want: editor.Event{Type: editor.KeyDown, Key: editor.KeyRune, Rune: 'e'},
			ok:   true,
		},
		{
			name: "control code",
			ev:   tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl),
			want: editor.Event{Type: editor.KeyDown, Key: editor.KeyRune, Rune: 'z', Mods: editor.ModCtrl},
			ok:   true,
		},
		{
			name: "rune with ctrl",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModCtrl|tcell.ModAlt),
			want: editor.Event{Type: editor.KeyDown, Key: editor.KeyRune, Rune: 'z', Mods: editor.ModCtrl | editor.ModAlt},
			ok:   true,
		},
		{
			name: "escape",
			ev:   tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
			want: editor.Event{Type: editor.KeyDown, Key: editor.KeyEscape},
			ok:   true,
		},
		{
			name: "delete",
			ev:   tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone),
			want: editor.Event{Type: editor.KeyDown, Key: editor.KeyDelete},
			ok:   true,
		},
		{
			name: "backspace",
			ev:   tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone),
			want: editor.Event{Type: editor.KeyDown, Key: editor.KeyBackspace},
			ok:   true,
		},
		{
			name: "arrow with shift",
			ev:   tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModShift),
			want: editor.Event{Type: editor.KeyDown, Key: editor.KeyArrowLeft, Mods: editor.ModShift},
			ok:   true,
		},
		{
			name: "function key",
			ev:   tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := keyEvent(tt.ev)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPointerTranslate(t *testing.T) {
	var ptr pointer
	at := diagram.Point{X: 8, Y: 16}

	ev := ptr.translate(tcell.NewEventMouse(1, 1, tcell.ButtonMiddle, tcell.ModNone), at)
	assert.Equal(t, editor.PointerDown, ev.Type)
	assert.Equal(t, editor.ButtonMiddle, ev.Button)
	assert.Equal(t, at, ev.Screen)

	ev = ptr.translate(tcell.NewEventMouse(2, 1, tcell.ButtonMiddle, tcell.ModShift), at)
	assert.Equal(t, editor.PointerMove, ev.Type)
	assert.True(t, ev.Shift())

	ev = ptr.translate(tcell.NewEventMouse(2, 1, tcell.ButtonNone, tcell.ModNone), at)
	assert.Equal(t, editor.PointerUp, ev.Type)
	assert.Equal(t, editor.ButtonMiddle, ev.Button)

	ev = ptr.translate(tcell.NewEventMouse(3, 1, tcell.ButtonNone, tcell.ModNone), at)
	assert.Equal(t, editor.PointerMove, ev.Type)
	assert.Equal(t, editor.ButtonNone, ev.Button)
}

func TestAddAndDragShape(t *testing.T) {
	a, _ := newApp(t)
	store := a.ed.Store

	mouse(a, 2, 2, tcell.ButtonNone, tcell.ModNone)
	press(a, tcell.KeyRune, 'e', tcell.ModNone)
	require.Len(t, store.Shapes(), 1)
	box := store.Shapes()[0].Frame()
	assert.Equal(t, diagram.Point{X: 16, Y: 32}, diagram.Point{X: box.X, Y: box.Y})

	mouse(a, 4, 4, tcell.ButtonPrimary, tcell.ModNone)
	mouse(a, 10, 4, tcell.ButtonPrimary, tcell.ModNone)
	mouse(a, 10, 4, tcell.ButtonNone, tcell.ModNone)

	assert.Equal(t, 64.0, box.X)
	assert.Equal(t, 32.0, box.Y)
	_, total := store.History().Stats()
	assert.Equal(t, 3, total, "initial state, add, move")

	press(a, tcell.KeyCtrlZ, 0, tcell.ModCtrl)
	assert.Equal(t, 16.0, store.Shapes()[0].Frame().X)
}

func TestConnectModeCreatesRelationship(t *testing.T) {
	a, _ := newApp(t)
	store := a.ed.Store
	src := store.AddEntity("A", 0, 0)
	trg := store.AddEntity("B", 400, 0)

	press(a, tcell.KeyTab, 0, tcell.ModNone)
	assert.Equal(t, editor.ModeConnect, a.ed.Mode())

	click(a, 10, 3)
	assert.Equal(t, editor.StatePendingFromSource, a.ed.Creator.State())
	click(a, 60, 3)

	require.Len(t, store.Relationships(), 1)
	r := store.Relationships()[0]
	assert.Equal(t, src.ID, r.Src.ID)
	assert.Equal(t, trg.ID, r.Trg.ID)
	assert.Zero(t, a.ed.Bus.Count())
}

func TestCommands(t *testing.T) {
	a, _ := newApp(t)

	press(a, tcell.KeyRune, '3', tcell.ModNone)
	assert.Equal(t, "relationship type dependency", a.Status())

	press(a, tcell.KeyRune, 'n', tcell.ModNone)
	press(a, tcell.KeyRune, 'u', tcell.ModNone)
	assert.Len(t, a.ed.Store.Diagram().Notes, 1)
	assert.Len(t, a.ed.Store.Diagram().Enumerations, 1)

	press(a, tcell.KeyRune, 'a', tcell.ModNone)
	assert.Equal(t, "auto-route: select a relationship", a.Status())

	press(a, tcell.KeyRight, 0, tcell.ModNone)
	assert.Equal(t, diagram.Point{X: -8}, a.ed.Camera.Pan)

	mouse(a, 0, 0, tcell.WheelUp, tcell.ModNone)
	assert.InDelta(t, 1.1, a.ed.Camera.Zoom, 1e-9)

	assert.False(t, press(a, tcell.KeyCtrlQ, 0, tcell.ModCtrl))
}

func TestSaveKey(t *testing.T) {
	var saved string
	a, _ := newApp(t, editor.WithSaveHandler(func(s string) error {
		saved = s
		return nil
	}))
	a.ed.Store.AddEntity("Invoice", 0, 0)

	press(a, tcell.KeyCtrlS, 0, tcell.ModCtrl)
	assert.Equal(t, "saved", a.Status())
	assert.Contains(t, saved, "Invoice")

	b, _ := newApp(t, editor.WithSaveHandler(func(string) error { return errors.New("disk full") }))
	press(b, tcell.KeyCtrlS, 0, tcell.ModCtrl)
	assert.Equal(t, "save failed: disk full", b.Status())
}

func TestDraw(t *testing.T) {
	a, s := newApp(t, editor.WithSaveHandler(func(string) error { return nil }))
	a.title = "orders.json"
	a.ed.Store.AddEntity("Customer", 0, 0)
	a.ed.Store.Select("")

	a.Draw()
	out := rows(s)
	require.Len(t, out, 25)
	assert.True(t, strings.HasPrefix(out[0], "┌───"))
	assert.Contains(t, out[1], "Customer")
	assert.Contains(t, out[24], "orders.json")
	assert.Contains(t, out[24], "SELECT")
	assert.Contains(t, out[24], "history 2/2")
}

func TestRun(t *testing.T) {
	a, s := newApp(t)
	s.InjectKey(tcell.KeyRune, 'e', tcell.ModNone)
	s.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl)
	require.NoError(t, a.Run(context.Background()))
	assert.Len(t, a.ed.Store.Shapes(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, _ := newApp(t)
	assert.NoError(t, b.Run(ctx))
}
