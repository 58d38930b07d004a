package editor

// Mode represents the current editing mode
type Mode int

const (
	ModeSelect  Mode = iota // Select, move and resize shapes
	ModeConnect             // Clicks on shapes create relationships
)

// String returns the mode name for display
func (m Mode) String() string {
	switch m {
	case ModeSelect:
		return "SELECT"
	case ModeConnect:
		return "CONNECT"
	default:
		return "UNKNOWN"
	}
}

// Mode returns the current mode.
func (e *Editor) Mode() Mode { return e.mode }

// SetMode changes the editor mode. Leaving connect mode abandons any
// relationship in progress.
func (e *Editor) SetMode(mode Mode) {
	if e.mode == mode {
		return
	}
	if e.mode == ModeConnect {
		e.Creator.Cancel()
	}
	e.mode = mode
	e.Hover.Clear()
	e.logger.Debug("mode changed", "mode", mode)
}

// ToggleMode switches between select and connect mode.
func (e *Editor) ToggleMode() {
	if e.mode == ModeSelect {
		e.SetMode(ModeConnect)
		return
	}
	e.SetMode(ModeSelect)
}
