package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umlboard/diagram"
	"umlboard/history"
)

func newTestEditor(t *testing.T, opts ...Option) (*Editor, *diagram.Entity, *diagram.Entity) {
	t.Helper()
	e := New(history.New(), opts...)
	a := box(t, e.Store, "A", 0, 0, 100, 60)
	b := box(t, e.Store, "B", 300, 0, 100, 60)
	return e, a, b
}

func down(x, y float64, button Button, mods Modifiers) Event {
	return Event{Type: PointerDown, Screen: diagram.Point{X: x, Y: y}, Button: button, Mods: mods}
}

func move(x, y float64, mods Modifiers) Event {
	return Event{Type: PointerMove, Screen: diagram.Point{X: x, Y: y}, Mods: mods}
}

func up(x, y float64) Event {
	return Event{Type: PointerUp, Screen: diagram.Point{X: x, Y: y}, Button: ButtonPrimary}
}

func key(k Key, r rune, mods Modifiers) Event {
	return Event{Type: KeyDown, Key: k, Rune: r, Mods: mods}
}

func rectOf(t *testing.T, e *Editor, id string) diagram.Rect {
	t.Helper()
	r, ok := diagram.RectOf(e.Store.FindShape(id))
	require.True(t, ok, "shape %s missing", id)
	return r
}

func TestEditorConnectByClicking(t *testing.T) {
	e, a, b := newTestEditor(t)
	e.SetMode(ModeConnect)

	e.Dispatch(down(100, 30, ButtonPrimary, 0))
	assert.Equal(t, StatePendingFromSource, e.Creator.State())
	e.Dispatch(down(200, 120, ButtonPrimary, 0))
	e.Dispatch(down(300, 30, ButtonPrimary, 0))

	rels := e.Store.Relationships()
	require.Len(t, rels, 1)
	r := rels[0]
	assert.Equal(t, diagram.Endpoint{ID: a.ID, Kind: diagram.KindEntity, Border: diagram.BorderRight, Position: 0.5}, r.Src)
	assert.Equal(t, diagram.Endpoint{ID: b.ID, Kind: diagram.KindEntity, Border: diagram.BorderLeft, Position: 0.5}, r.Trg)
	assert.Equal(t, []diagram.Point{{X: 200, Y: 120}}, r.BendPoints)
	assert.Zero(t, e.Bus.Count())
}

func TestEditorLeavingConnectModeCancels(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.SetMode(ModeConnect)
	e.Dispatch(down(100, 30, ButtonPrimary, 0))
	require.True(t, e.Creator.Active())

	e.ToggleMode()
	assert.Equal(t, ModeSelect, e.Mode())
	assert.False(t, e.Creator.Active())
	assert.Zero(t, e.Bus.Count())
}

func TestMoveEscapeRestores(t *testing.T) {
	e, a, _ := newTestEditor(t)
	before := e.Store.History().Len()
	orig := rectOf(t, e, a.ID)

	e.Dispatch(down(50, 30, ButtonPrimary, 0))
	require.True(t, e.Mover.Active())
	assert.Equal(t, a.ID, e.Store.Selected())

	e.Dispatch(move(60, 40, 0))
	e.Flush()
	assert.Equal(t, diagram.Rect{X: 10, Y: 10, Width: 100, Height: 60}, rectOf(t, e, a.ID))

	e.Dispatch(move(90, 70, 0))
	e.Dispatch(key(KeyEscape, 0, 0))
	e.Flush()

	assert.Equal(t, orig, rectOf(t, e, a.ID))
	assert.False(t, e.Mover.Active())
	assert.Zero(t, e.Bus.Count())
	assert.Equal(t, before, e.Store.History().Len())
}

func TestMoveSnapsAndSavesOnce(t *testing.T) {
	e, a, _ := newTestEditor(t)
	before := e.Store.History().Len()

	e.Dispatch(down(50, 30, ButtonPrimary, 0))
	for x := 60.0; x <= 245; x += 5 {
		e.Dispatch(move(x, 32, 0))
	}
	e.Flush()
	assert.Equal(t, diagram.Rect{X: 200, Y: 0, Width: 100, Height: 60}, rectOf(t, e, a.ID))
	assert.NotEmpty(t, e.Guides())

	e.Dispatch(up(245, 32))
	assert.Equal(t, before+1, e.Store.History().Len())
	assert.Empty(t, e.Guides())
	assert.Zero(t, e.Bus.Count())

	require.NoError(t, e.Undo())
	assert.Equal(t, diagram.Rect{X: 0, Y: 0, Width: 100, Height: 60}, rectOf(t, e, a.ID))
}

func TestMoveModifiers(t *testing.T) {
	tests := []struct {
		name string
		mods Modifiers
		to   diagram.Point
		want diagram.Point
	}{
		{"snaps by default", 0, diagram.Point{X: 245, Y: 32}, diagram.Point{X: 200, Y: 0}},
		{"ctrl bypasses snapping", ModCtrl, diagram.Point{X: 245, Y: 32}, diagram.Point{X: 195, Y: 2}},
		{"shift keeps dominant axis", ModShift, diagram.Point{X: 150, Y: 50}, diagram.Point{X: 100, Y: 0}},
		{"shift vertical", ModShift, diagram.Point{X: 60, Y: 230}, diagram.Point{X: 0, Y: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, a, _ := newTestEditor(t)
			e.Dispatch(down(50, 30, ButtonPrimary, 0))
			e.Dispatch(move(tt.to.X, tt.to.Y, tt.mods))
			release := up(tt.to.X, tt.to.Y)
			release.Mods = tt.mods
			e.Dispatch(release)

			r := rectOf(t, e, a.ID)
			assert.Equal(t, tt.want, diagram.Point{X: r.X, Y: r.Y})
		})
	}
}

func TestReleaseWithoutMoveDoesNotSave(t *testing.T) {
	e, _, _ := newTestEditor(t)
	before := e.Store.History().Len()

	e.Dispatch(down(50, 30, ButtonPrimary, 0))
	e.Dispatch(up(50, 30))
	assert.Equal(t, before, e.Store.History().Len())
}

func TestResizeEnforcesMinimum(t *testing.T) {
	e, a, _ := newTestEditor(t)

	e.Dispatch(down(98, 58, ButtonPrimary, 0))
	require.True(t, e.Mover.Active())

	e.Dispatch(move(58, 38, 0))
	e.Flush()
	assert.Equal(t, diagram.Rect{X: 0, Y: 0, Width: 60, Height: 40}, rectOf(t, e, a.ID))

	e.Dispatch(move(8, 8, 0))
	e.Dispatch(up(8, 8))
	assert.Equal(t, diagram.Rect{X: 0, Y: 0, Width: diagram.MinWidth, Height: diagram.MinHeight}, rectOf(t, e, a.ID))
}

func TestBendDrag(t *testing.T) {
	e, a, b := newTestEditor(t)
	r := link(t, e.Store, a, b, diagram.Point{X: 200, Y: 150})
	before := e.Store.History().Len()

	e.Dispatch(down(201, 151, ButtonPrimary, 0))
	require.True(t, e.Bends.Active())
	assert.Equal(t, r.ID, e.Store.Selected())

	e.Dispatch(move(211, 171, 0))
	e.Dispatch(up(211, 171))
	assert.Equal(t, []diagram.Point{{X: 210, Y: 170}}, e.Store.FindRelationship(r.ID).BendPoints)
	assert.Equal(t, before+1, e.Store.History().Len())

	e.Dispatch(down(210, 170, ButtonPrimary, 0))
	e.Dispatch(move(260, 260, 0))
	e.Flush()
	e.Dispatch(key(KeyEscape, 0, 0))
	assert.Equal(t, []diagram.Point{{X: 210, Y: 170}}, e.Store.FindRelationship(r.ID).BendPoints)
}

func TestBendDragShiftAndSnap(t *testing.T) {
	e, a, b := newTestEditor(t)
	r := link(t, e.Store, a, b, diagram.Point{X: 200, Y: 150})

	e.Dispatch(down(200, 150, ButtonPrimary, 0))
	e.Dispatch(move(296, 160, ModShift))
	e.Dispatch(up(296, 160))

	assert.Equal(t, []diagram.Point{{X: 300, Y: 150}}, e.Store.FindRelationship(r.ID).BendPoints)
	assert.ErrorIs(t, e.Bends.Start("missing", 0, diagram.Point{}), ErrUnknownRelationship)
	assert.Error(t, e.Bends.Start(r.ID, 3, diagram.Point{}))
}

func TestPanOnEmptySpace(t *testing.T) {
	e, _, _ := newTestEditor(t)

	e.Dispatch(down(500, 500, ButtonMiddle, 0))
	require.True(t, e.Pan.Active())
	e.Dispatch(move(520, 490, 0))
	e.Dispatch(up(520, 490))
	assert.Equal(t, diagram.Point{X: 20, Y: -10}, e.Camera.Pan)

	// Diagram coordinates now account for the pan.
	e.Dispatch(down(70, 20, ButtonPrimary, 0))
	assert.True(t, e.Mover.Active())
	e.Dispatch(key(KeyEscape, 0, 0))

	e.Dispatch(down(500, 500, ButtonSecondary, 0))
	e.Dispatch(move(600, 600, 0))
	e.Flush()
	e.Dispatch(key(KeyEscape, 0, 0))
	assert.Equal(t, diagram.Point{X: 20, Y: -10}, e.Camera.Pan)
}

func TestHoverPreviewAndCommit(t *testing.T) {
	e, a, b := newTestEditor(t)
	r := link(t, e.Store, a, b)

	e.Dispatch(move(200, 35, 0))
	relID, p, index, ok := e.Hover.Preview()
	require.True(t, ok)
	assert.Equal(t, r.ID, relID)
	assert.Equal(t, diagram.Point{X: 200, Y: 30}, p)
	assert.Zero(t, index)

	idx, err := e.Hover.Commit()
	require.NoError(t, err)
	assert.Zero(t, idx)
	assert.Equal(t, []diagram.Point{{X: 200, Y: 30}}, e.Store.FindRelationship(r.ID).BendPoints)

	e.Dispatch(move(200, 45, 0))
	_, _, _, ok = e.Hover.Preview()
	assert.False(t, ok)
	_, err = e.Hover.Commit()
	assert.ErrorIs(t, err, ErrUnknownRelationship)
}

func TestCtrlClickInsertsBendPoint(t *testing.T) {
	e, a, b := newTestEditor(t)
	r := link(t, e.Store, a, b)

	e.Dispatch(down(150, 33, ButtonPrimary, ModCtrl))
	assert.Equal(t, []diagram.Point{{X: 150, Y: 30}}, e.Store.FindRelationship(r.ID).BendPoints)
	assert.Equal(t, r.ID, e.Store.Selected())
}

func TestPressOnSelectedEndpointReattaches(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		press diagram.Point
		side  EndpointSide
	}{
		{"target in select mode", ModeSelect, diagram.Point{X: 300, Y: 30}, EndpointTrg},
		{"target in connect mode", ModeConnect, diagram.Point{X: 302, Y: 31}, EndpointTrg},
		{"source in select mode", ModeSelect, diagram.Point{X: 100, Y: 30}, EndpointSrc},
		{"source in connect mode", ModeConnect, diagram.Point{X: 99, Y: 28}, EndpointSrc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, a, b := newTestEditor(t)
			c := box(t, e.Store, "C", 300, 300, 100, 60)
			r := link(t, e.Store, a, b, diagram.Point{X: 200, Y: 120})
			e.SetMode(tt.mode)
			e.Store.Select(r.ID)
			before := e.Store.History().Len()

			e.Dispatch(down(tt.press.X, tt.press.Y, ButtonPrimary, 0))
			require.Equal(t, StateEditingEndpoint, e.Creator.State())
			assert.False(t, e.Mover.Active())

			e.Dispatch(move(320, 200, 0))
			e.Dispatch(up(320, 200))
			assert.Equal(t, diagram.Rect{X: 300, Y: 0, Width: 100, Height: 60}, rectOf(t, e, b.ID))
			assert.Equal(t, diagram.Rect{X: 0, Y: 0, Width: 100, Height: 60}, rectOf(t, e, a.ID))

			e.Dispatch(down(350, 310, ButtonPrimary, 0))
			assert.Equal(t, StateIdle, e.Creator.State())
			assert.Zero(t, e.Bus.Count())
			require.Len(t, e.Store.Relationships(), 1)

			got := e.Store.FindRelationship(r.ID)
			moved := diagram.Endpoint{ID: c.ID, Kind: diagram.KindEntity, Border: diagram.BorderTop, Position: 0.5}
			if tt.side == EndpointSrc {
				assert.Equal(t, moved, got.Src)
				assert.Equal(t, b.ID, got.Trg.ID)
			} else {
				assert.Equal(t, a.ID, got.Src.ID)
				assert.Equal(t, moved, got.Trg)
			}
			assert.Equal(t, []diagram.Point{{X: 200, Y: 120}}, got.BendPoints)
			assert.Equal(t, before+1, e.Store.History().Len())
		})
	}
}

func TestPressOnUnselectedEndpointMovesShape(t *testing.T) {
	e, a, b := newTestEditor(t)
	link(t, e.Store, a, b, diagram.Point{X: 200, Y: 120})
	e.Store.Select("")

	e.Dispatch(down(300, 30, ButtonPrimary, 0))
	assert.Equal(t, StateIdle, e.Creator.State())
	assert.True(t, e.Mover.Active())
	assert.Equal(t, b.ID, e.Store.Selected())
	e.Dispatch(key(KeyEscape, 0, 0))
}

func TestSecondaryClickRemovesBendPoint(t *testing.T) {
	e, a, b := newTestEditor(t)
	r := link(t, e.Store, a, b, diagram.Point{X: 200, Y: 150}, diagram.Point{X: 250, Y: 150})
	before := e.Store.History().Len()

	e.Dispatch(down(202, 151, ButtonSecondary, 0))
	assert.Equal(t, []diagram.Point{{X: 250, Y: 150}}, e.Store.FindRelationship(r.ID).BendPoints)
	assert.Equal(t, before+1, e.Store.History().Len())
	assert.False(t, e.Pan.Active())
	assert.Zero(t, e.Bus.Count())

	// Nothing left under the pointer, so the press pans.
	e.Dispatch(down(200, 150, ButtonSecondary, 0))
	assert.True(t, e.Pan.Active())
	e.Dispatch(key(KeyEscape, 0, 0))
	assert.Equal(t, before+1, e.Store.History().Len())
}

func TestKeyCommands(t *testing.T) {
	var saved []string
	e, a, _ := newTestEditor(t, WithSaveHandler(func(s string) error {
		saved = append(saved, s)
		return nil
	}))

	e.Store.Select(a.ID)
	e.Dispatch(key(KeyDelete, 0, 0))
	assert.Nil(t, e.Store.FindShape(a.ID))

	e.Dispatch(key(KeyRune, 'z', ModCtrl))
	assert.NotNil(t, e.Store.FindShape(a.ID))

	e.Dispatch(key(KeyRune, 'y', ModCtrl))
	assert.Nil(t, e.Store.FindShape(a.ID))

	e.Dispatch(key(KeyRune, 'z', ModCtrl))
	e.Dispatch(key(KeyRune, 'z', ModCtrl|ModAlt))
	assert.Nil(t, e.Store.FindShape(a.ID))

	e.Dispatch(key(KeyRune, 's', ModCtrl))
	require.Len(t, saved, 1)
	d, err := diagram.Unmarshal(saved[0])
	require.NoError(t, err)
	assert.Len(t, d.Entities, 1)
}

func TestUndoAbortsGesture(t *testing.T) {
	e, a, _ := newTestEditor(t)

	e.Dispatch(down(50, 30, ButtonPrimary, 0))
	e.Dispatch(move(80, 80, 0))
	e.Flush()
	require.NoError(t, e.Undo())

	assert.False(t, e.Bus.Busy())
	assert.Zero(t, e.Bus.Count())
	assert.Equal(t, diagram.Rect{X: 0, Y: 0, Width: 100, Height: 60}, rectOf(t, e, a.ID))
}

func TestEscapeClearsSelection(t *testing.T) {
	e, a, _ := newTestEditor(t)
	e.Store.Select(a.ID)
	e.Dispatch(key(KeyEscape, 0, 0))
	assert.Empty(t, e.Store.Selected())
}

func TestZoomAroundCursor(t *testing.T) {
	e, _, _ := newTestEditor(t)
	cursor := diagram.Point{X: 200, Y: 100}
	anchor := e.Camera.ToDiagram(cursor)

	e.Zoom(cursor, 3)
	assert.InDelta(t, 1.331, e.Camera.Zoom, 1e-9)
	after := e.Camera.ToDiagram(cursor)
	assert.InDelta(t, anchor.X, after.X, 1e-9)
	assert.InDelta(t, anchor.Y, after.Y, 1e-9)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "SELECT", ModeSelect.String())
	assert.Equal(t, "CONNECT", ModeConnect.String())
	assert.Equal(t, "UNKNOWN", Mode(7).String())
}
