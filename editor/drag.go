package editor

// DragCallbacks are invoked over the lifetime of a drag. Any may be nil.
type DragCallbacks struct {
	// Move receives the latest pointer position once per frame.
	Move func(Event)
	// End runs on pointer-up after the last pending move has been applied.
	End func(Event)
	// Cancel runs on Escape or when another gesture takes over the bus.
	Cancel func()
}

// Drag is a pointer drag in progress.
type Drag struct {
	session *session
	frames  *FrameScheduler
	key     string
	cb      DragCallbacks
}

// StartDrag begins a drag on bus. Pointer moves are coalesced through
// frames under the drag's name.
func StartDrag(bus *Bus, frames *FrameScheduler, name string, cb DragCallbacks) *Drag {
	d := &Drag{frames: frames, key: "drag:" + name, cb: cb}
	d.session = bus.begin(name, d.cancelled)
	d.session.on(PointerMove, d.onMove)
	d.session.on(PointerUp, d.onUp)
	d.session.on(KeyDown, d.onKey)
	return d
}

// Active reports whether the drag is still running.
func (d *Drag) Active() bool { return !d.session.finished }

// Cancel aborts the drag as if Escape was pressed.
func (d *Drag) Cancel() { d.session.abort() }

func (d *Drag) onMove(ev Event) {
	if d.cb.Move == nil {
		return
	}
	d.frames.Schedule(d.key, func() { d.cb.Move(ev) })
}

func (d *Drag) onUp(ev Event) {
	d.frames.Run(d.key)
	d.session.end()
	if d.cb.End != nil {
		d.cb.End(ev)
	}
}

func (d *Drag) onKey(ev Event) {
	if ev.Key == KeyEscape {
		d.session.abort()
	}
}

func (d *Drag) cancelled() {
	d.frames.Cancel(d.key)
	if d.cb.Cancel != nil {
		d.cb.Cancel()
	}
}
