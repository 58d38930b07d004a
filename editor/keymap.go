package editor

import "unicode"

// Command is an editor action bound to a key chord.
type Command int

const (
	CommandNone Command = iota
	CommandUndo
	CommandRedo
	CommandSave
	CommandDelete
	CommandCancel
)

// String returns the string representation of a Command.
func (c Command) String() string {
	switch c {
	case CommandUndo:
		return "undo"
	case CommandRedo:
		return "redo"
	case CommandSave:
		return "save"
	case CommandDelete:
		return "delete"
	case CommandCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Resolve maps a key event to a command.
//
//	Ctrl+Z            undo
//	Ctrl+Y            redo
//	Ctrl+Alt+Z        redo
//	Ctrl+S            save
//	Delete/Backspace  delete selection
//	Escape            cancel
func Resolve(ev Event) Command {
	if ev.Type != KeyDown {
		return CommandNone
	}
	switch ev.Key {
	case KeyEscape:
		return CommandCancel
	case KeyDelete, KeyBackspace:
		return CommandDelete
	case KeyRune:
	default:
		return CommandNone
	}

	if !ev.Mods.Has(ModCtrl) {
		return CommandNone
	}
	switch unicode.ToLower(ev.Rune) {
	case 'z':
		if ev.Mods.Has(ModAlt) {
			return CommandRedo
		}
		return CommandUndo
	case 'y':
		return CommandRedo
	case 's':
		return CommandSave
	}
	return CommandNone
}
