package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"umlboard/diagram"
)

func TestBusDispatch(t *testing.T) {
	b := NewBus()
	var got []string

	first := b.Listen(PointerMove, func(Event) { got = append(got, "first") })
	var second ListenerID
	second = b.Listen(PointerMove, func(Event) {
		got = append(got, "second")
		b.Unlisten(second)
	})
	b.Listen(KeyDown, func(Event) { got = append(got, "key") })

	assert.True(t, b.Dispatch(Event{Type: PointerMove, Mods: ModShift}))
	assert.Equal(t, []string{"first", "second"}, got)
	assert.True(t, b.Modifiers().Has(ModShift))
	assert.Equal(t, 2, b.Count())

	b.Unlisten(first)
	b.Unlisten(ListenerID(999))
	assert.False(t, b.Dispatch(Event{Type: PointerMove}))
	assert.False(t, b.Modifiers().Has(ModShift))
}

func TestBusSkipsHandlersRemovedDuringDispatch(t *testing.T) {
	b := NewBus()
	calls := 0
	var later ListenerID
	b.Listen(PointerDown, func(Event) { b.Unlisten(later) })
	later = b.Listen(PointerDown, func(Event) { calls++ })

	b.Dispatch(Event{Type: PointerDown})
	assert.Zero(t, calls)
}

func TestSessionLifecycle(t *testing.T) {
	b := NewBus()
	aborted := 0
	s := b.begin("first", func() { aborted++ })
	s.on(PointerMove, func(Event) {})
	s.on(KeyDown, func(Event) {})
	assert.Equal(t, "first", b.Active())
	assert.Equal(t, 2, b.Count())

	next := b.begin("second", nil)
	assert.Equal(t, 1, aborted)
	assert.Zero(t, b.Count())
	assert.Equal(t, "second", b.Active())

	s.abort()
	s.on(PointerUp, func(Event) {})
	assert.Equal(t, 1, aborted)
	assert.Zero(t, b.Count())

	next.end()
	next.end()
	assert.False(t, b.Busy())
	assert.Empty(t, b.Active())
}

func TestFrameSchedulerCoalesces(t *testing.T) {
	f := NewFrameScheduler()
	var ran []string

	f.Schedule("move", func() { ran = append(ran, "move-1") })
	f.Schedule("hover", func() { ran = append(ran, "hover") })
	f.Schedule("move", func() { ran = append(ran, "move-2") })
	assert.Equal(t, 2, f.Pending())

	f.Flush()
	assert.Equal(t, []string{"move-2", "hover"}, ran)
	assert.Zero(t, f.Pending())
}

func TestFrameSchedulerRunAndCancel(t *testing.T) {
	f := NewFrameScheduler()
	ran := 0
	f.Schedule("a", func() { ran++ })
	f.Schedule("b", func() { ran += 10 })

	f.Run("a")
	f.Run("a")
	f.Cancel("b")
	f.Flush()
	assert.Equal(t, 1, ran)
}

func TestFrameSchedulerDefersWorkScheduledDuringFlush(t *testing.T) {
	f := NewFrameScheduler()
	ran := 0
	f.Schedule("a", func() {
		ran++
		f.Schedule("a", func() { ran++ })
	})

	f.Flush()
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, f.Pending())
	f.Flush()
	assert.Equal(t, 2, ran)
}

func TestCamera(t *testing.T) {
	c := NewCamera()
	c.Pan = diagram.Point{X: 10, Y: 20}
	c.SetZoom(2)

	p := diagram.Point{X: 123, Y: -45}
	assert.Equal(t, p, c.ToScreen(c.ToDiagram(p)))
	assert.Equal(t, diagram.Point{X: 30, Y: 40}, c.ToScreen(diagram.Point{X: 10, Y: 10}))

	c.ZoomAt(diagram.Point{}, 100)
	assert.Equal(t, MaxZoom, c.Zoom)
	c.ZoomAt(diagram.Point{}, -100)
	assert.Equal(t, MinZoom, c.Zoom)

	c.SetZoom(10)
	assert.Equal(t, MaxZoom, c.Zoom)

	c.Pan = diagram.Point{X: 10, Y: 20}
	c.PanBy(diagram.Point{X: 5, Y: -5})
	assert.Equal(t, diagram.Point{X: 15, Y: 15}, c.Pan)

	broken := &Camera{}
	assert.Equal(t, p, broken.ToDiagram(p))
}

func TestCameraFit(t *testing.T) {
	c := NewCamera()
	c.Fit(diagram.Rect{X: 100, Y: 100, Width: 200, Height: 100}, diagram.Point{X: 800, Y: 600}, 0)

	assert.Equal(t, 3.0, c.Zoom)
	center := c.ToScreen(diagram.Point{X: 200, Y: 150})
	assert.Equal(t, diagram.Point{X: 400, Y: 300}, center)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Command
	}{
		{"ctrl z", Event{Type: KeyDown, Key: KeyRune, Rune: 'z', Mods: ModCtrl}, CommandUndo},
		{"ctrl shift Z", Event{Type: KeyDown, Key: KeyRune, Rune: 'Z', Mods: ModCtrl | ModShift}, CommandUndo},
		{"ctrl alt z", Event{Type: KeyDown, Key: KeyRune, Rune: 'z', Mods: ModCtrl | ModAlt}, CommandRedo},
		{"ctrl y", Event{Type: KeyDown, Key: KeyRune, Rune: 'y', Mods: ModCtrl}, CommandRedo},
		{"ctrl s", Event{Type: KeyDown, Key: KeyRune, Rune: 's', Mods: ModCtrl}, CommandSave},
		{"plain z", Event{Type: KeyDown, Key: KeyRune, Rune: 'z'}, CommandNone},
		{"delete", Event{Type: KeyDown, Key: KeyDelete}, CommandDelete},
		{"backspace", Event{Type: KeyDown, Key: KeyBackspace}, CommandDelete},
		{"escape", Event{Type: KeyDown, Key: KeyEscape}, CommandCancel},
		{"arrow", Event{Type: KeyDown, Key: KeyArrowUp, Mods: ModCtrl}, CommandNone},
		{"pointer", Event{Type: PointerDown, Key: KeyEscape}, CommandNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.ev))
		})
	}
}
