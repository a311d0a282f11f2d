package ui

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"mapview/internal/render"
	"mapview/internal/viewer"
)

const helpText = "←↑→↓ pan  PgUp/PgDn zoom  / search  r reset  t style  q quit "

// StatusBar shows the viewport state and the outcome of the last action
type StatusBar struct {
	width int
	busy  bool
}

// NewStatusBar creates a status bar width cells wide
func NewStatusBar(width int) *StatusBar {
	return &StatusBar{width: width}
}

// SetBusy marks a request as in flight
func (s *StatusBar) SetBusy(busy bool) {
	s.busy = busy
}

// Summary describes the committed viewport in one line
func Summary(session *viewer.Session) string {
	state := session.State()
	line := fmt.Sprintf(" %s  z%d  %s", state.Center(), state.Zoom(), state.Style())
	if place := session.NearestPlace(); place != "" {
		line += "  near " + place
	}
	return line
}

// Draw renders the bar on row y of canvas
func (s *StatusBar) Draw(canvas *render.Canvas, y int, session *viewer.Session) {
	canvas.FillRect(0, y, s.width, 1, ' ', render.StyleStatus)

	x := canvas.DrawText(0, y, Summary(session), s.width, render.StyleStatus)

	right, style := helpText, render.StyleHelp
	switch {
	case s.busy:
		right, style = "Loading... ", render.StyleMessage
	case session.Message() != "":
		right, style = session.Message()+" ", render.StyleMessage
	}

	room := s.width - x - 2
	if room <= 0 {
		return
	}
	right = runewidth.Truncate(right, room, "…")
	canvas.DrawText(s.width-runewidth.StringWidth(right), y, right, room, style)
}

// UpdateDimensions updates the bar width when the screen is resized
func (s *StatusBar) UpdateDimensions(width int) {
	s.width = width
}
