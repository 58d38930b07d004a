package editor

type listener struct {
	id  ListenerID
	typ EventType
	fn  Handler
}

// Bus delivers input events to the listeners of the active gesture. It
// also remembers the modifiers of the last event so controllers can query
// them outside of an event callback.
type Bus struct {
	next      ListenerID
	listeners []listener
	mods      Modifiers
	active    *session
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Listen registers fn for events of type t.
func (b *Bus) Listen(t EventType, fn Handler) ListenerID {
	b.next++
	b.listeners = append(b.listeners, listener{id: b.next, typ: t, fn: fn})
	return b.next
}

// Unlisten removes a handler. Unknown ids are ignored.
func (b *Bus) Unlisten(id ListenerID) {
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Count returns the number of registered handlers.
func (b *Bus) Count() int { return len(b.listeners) }

// Modifiers returns the modifiers held during the last dispatched event.
func (b *Bus) Modifiers() Modifiers { return b.mods }

// SetModifiers records modifier state reported outside of an event.
func (b *Bus) SetModifiers(m Modifiers) { b.mods = m }

// Dispatch delivers ev to every handler registered for its type, in
// registration order. A handler removed by an earlier handler during the
// same dispatch is skipped. It reports whether any handler ran.
func (b *Bus) Dispatch(ev Event) bool {
	b.mods = ev.Mods

	snapshot := make([]listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		if l.typ == ev.Type {
			snapshot = append(snapshot, l)
		}
	}

	ran := false
	for _, l := range snapshot {
		if !b.registered(l.id) {
			continue
		}
		l.fn(ev)
		ran = true
	}
	return ran
}

func (b *Bus) registered(id ListenerID) bool {
	for _, l := range b.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// Busy reports whether a gesture currently owns the bus.
func (b *Bus) Busy() bool { return b.active != nil }

// Abort cancels the active gesture, if any.
func (b *Bus) Abort() {
	if s := b.active; s != nil {
		s.abort()
	}
}
