package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/rescale/rescale-browse/internal/reslist"
)

// translateKey maps a fyne key to an engine key event. Keys the engine does not
// handle report false.
func translateKey(name fyne.KeyName, shift bool) (reslist.KeyEvent, bool) {
	ev := reslist.KeyEvent{Shift: shift}
	switch name {
	case fyne.KeyUp:
		ev.Key = reslist.KeyArrowUp
	case fyne.KeyDown:
		ev.Key = reslist.KeyArrowDown
	case fyne.KeyLeft:
		ev.Key = reslist.KeyArrowLeft
	case fyne.KeyRight:
		ev.Key = reslist.KeyArrowRight
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		ev.Key = reslist.KeyShift
	default:
		return ev, false
	}
	return ev, true
}

func isShiftKey(name fyne.KeyName) bool {
	return name == desktop.KeyShiftLeft || name == desktop.KeyShiftRight
}

// translateModifiers maps pointer modifiers. Cmd on macOS counts as Ctrl.
func translateModifiers(m fyne.KeyModifier) reslist.Modifiers {
	var mods reslist.Modifiers
	if m&fyne.KeyModifierShift != 0 {
		mods |= reslist.ModShift
	}
	if m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0 {
		mods |= reslist.ModCtrl
	}
	return mods
}

// sortGlyph is the header suffix for a column's sort direction.
func sortGlyph(d reslist.SortDirection) string {
	switch d {
	case reslist.Ascending:
		return " ▲"
	case reslist.Descending:
		return " ▼"
	}
	return ""
}
