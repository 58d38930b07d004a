package editor

import "umlboard/diagram"

// EventType identifies the kind of input event.
type EventType int

const (
	PointerMove EventType = iota
	PointerDown
	PointerUp
	KeyDown
)

// String returns the string representation of an EventType.
func (t EventType) String() string {
	switch t {
	case PointerMove:
		return "PointerMove"
	case PointerDown:
		return "PointerDown"
	case PointerUp:
		return "PointerUp"
	case KeyDown:
		return "KeyDown"
	default:
		return "Unknown"
	}
}

// Button is a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every modifier in m2 is held.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// Key is a non-printable key. Printable keys use KeyRune with Event.Rune set.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyDelete
	KeyBackspace
	KeyTab
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// Event is a pointer or keyboard input.
//
// Screen is in viewport pixels; Point is the same position in diagram
// space and is filled in by Editor.Dispatch from the camera.
type Event struct {
	Type   EventType
	Screen diagram.Point
	Point  diagram.Point
	Button Button
	Mods   Modifiers
	Key    Key
	Rune   rune
}

// Shift reports whether the orthogonal modifier is held.
func (e Event) Shift() bool { return e.Mods.Has(ModShift) }

// Handler receives dispatched events.
type Handler func(Event)

// ListenerID identifies a registered handler.
type ListenerID int
