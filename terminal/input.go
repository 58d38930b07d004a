package terminal

import (
	"github.com/gdamore/tcell/v2"

	"umlboard/diagram"
	"umlboard/editor"
)

// pointer tracks the button state between mouse reports. Terminals send
// the current button mask with every report, so presses and releases are
// inferred from changes to it.
type pointer struct {
	buttons tcell.ButtonMask
}

const pressMask = tcell.ButtonPrimary | tcell.ButtonSecondary | tcell.ButtonMiddle

// translate converts a mouse report at screen position p into an editor
// event.
func (ptr *pointer) translate(ev *tcell.EventMouse, p diagram.Point) editor.Event {
	now := ev.Buttons() & pressMask
	prev := ptr.buttons
	ptr.buttons = now

	out := editor.Event{Screen: p, Mods: modifiers(ev.Modifiers())}
	switch {
	case prev == 0 && now != 0:
		out.Type = editor.PointerDown
		out.Button = button(now)
	case prev != 0 && now == 0:
		out.Type = editor.PointerUp
		out.Button = button(prev)
	default:
		out.Type = editor.PointerMove
		out.Button = button(now)
	}
	return out
}

func button(m tcell.ButtonMask) editor.Button {
	switch {
	case m&tcell.ButtonPrimary != 0:
		return editor.ButtonPrimary
	case m&tcell.ButtonSecondary != 0:
		return editor.ButtonSecondary
	case m&tcell.ButtonMiddle != 0:
		return editor.ButtonMiddle
	}
	return editor.ButtonNone
}

func modifiers(m tcell.ModMask) editor.Modifiers {
	var out editor.Modifiers
	if m&tcell.ModShift != 0 {
		out |= editor.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= editor.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= editor.ModAlt
	}
	return out
}

// keyEvent converts a key report into an editor key event. Control
// characters arrive as their own key codes and are turned back into a rune
// with ModCtrl so the keymap sees Ctrl+Z the same way on every terminal.
func keyEvent(ev *tcell.EventKey) (editor.Event, bool) {
	out := editor.Event{Type: editor.KeyDown, Mods: modifiers(ev.Modifiers())}
	switch k := ev.Key(); k {
	case tcell.KeyRune:
		out.Key = editor.KeyRune
		out.Rune = ev.Rune()
	case tcell.KeyEscape:
		out.Key = editor.KeyEscape
	case tcell.KeyEnter:
		out.Key = editor.KeyEnter
	case tcell.KeyTab:
		out.Key = editor.KeyTab
	case tcell.KeyDelete:
		out.Key = editor.KeyDelete
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		out.Key = editor.KeyBackspace
	case tcell.KeyUp:
		out.Key = editor.KeyArrowUp
	case tcell.KeyDown:
		out.Key = editor.KeyArrowDown
	case tcell.KeyLeft:
		out.Key = editor.KeyArrowLeft
	case tcell.KeyRight:
		out.Key = editor.KeyArrowRight
	default:
		if k < tcell.KeyCtrlA || k > tcell.KeyCtrlZ {
			return editor.Event{}, false
		}
		out.Key = editor.KeyRune
		out.Rune = rune('a' + (k - tcell.KeyCtrlA))
		out.Mods |= editor.ModCtrl
	}
	return out, true
}
