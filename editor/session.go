package editor

// session owns the listeners of one gesture. end is the only place they
// are removed, and every exit path of a gesture goes through it.
type session struct {
	bus      *Bus
	name     string
	ids      []ListenerID
	onAbort  func()
	finished bool
}

// begin starts a gesture session. A gesture still in progress is aborted
// first so its listeners can never fire into the new one.
func (b *Bus) begin(name string, onAbort func()) *session {
	b.Abort()
	s := &session{bus: b, name: name, onAbort: onAbort}
	b.active = s
	return s
}

// on registers fn for the lifetime of the session.
func (s *session) on(t EventType, fn Handler) {
	if s.finished {
		return
	}
	s.ids = append(s.ids, s.bus.Listen(t, fn))
}

// end detaches every listener. Calling it again does nothing.
func (s *session) end() {
	if s.finished {
		return
	}
	s.finished = true
	for _, id := range s.ids {
		s.bus.Unlisten(id)
	}
	s.ids = nil
	if s.bus.active == s {
		s.bus.active = nil
	}
}

// abort runs the gesture's cancel logic and ends the session.
func (s *session) abort() {
	if s.finished {
		return
	}
	if s.onAbort != nil {
		s.onAbort()
	}
	s.end()
}

// Active returns the name of the gesture owning the bus, or "".
func (b *Bus) Active() string {
	if b.active == nil {
		return ""
	}
	return b.active.name
}
