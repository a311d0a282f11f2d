package ui

import (
	"github.com/gdamore/tcell/v2"

	"mapview/internal/viewer"
)

// KeyAction maps a key pressed while the map has focus to a viewport action.
// Arrows pan, PgUp/PgDn zoom; r and t stand in for the reset and style buttons.
func KeyAction(ev *tcell.EventKey) (viewer.Action, bool) {
	switch ev.Key() {
	case tcell.KeyLeft:
		return viewer.ActionPanWest, true
	case tcell.KeyRight:
		return viewer.ActionPanEast, true
	case tcell.KeyUp:
		return viewer.ActionPanNorth, true
	case tcell.KeyDown:
		return viewer.ActionPanSouth, true
	case tcell.KeyPgUp:
		return viewer.ActionZoomIn, true
	case tcell.KeyPgDn:
		return viewer.ActionZoomOut, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'r', 'R':
			return viewer.ActionReset, true
		case 't', 'T':
			return viewer.ActionToggleStyle, true
		}
	}

	return 0, false
}
