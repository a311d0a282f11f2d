package ui

import (
	"github.com/mattn/go-runewidth"

	"mapview/internal/render"
)

const (
	searchPrompt      = " Search: "
	searchPlaceholder = "press / and type a place name"
)

// SearchBar is a one-line text input for geocoder queries
type SearchBar struct {
	text   []rune
	cursor int
	active bool
	width  int
}

// NewSearchBar creates a search bar width cells wide
func NewSearchBar(width int) *SearchBar {
	return &SearchBar{width: width}
}

// Text returns the current input
func (s *SearchBar) Text() string {
	return string(s.text)
}

// SetText replaces the input and moves the cursor to its end
func (s *SearchBar) SetText(text string) {
	s.text = []rune(text)
	s.cursor = len(s.text)
}

// Clear empties the input
func (s *SearchBar) Clear() {
	s.text = s.text[:0]
	s.cursor = 0
}

// Active reports whether the bar has keyboard focus
func (s *SearchBar) Active() bool {
	return s.active
}

// SetActive gives or takes keyboard focus
func (s *SearchBar) SetActive(active bool) {
	s.active = active
}

// Insert adds a rune at the cursor
func (s *SearchBar) Insert(r rune) {
	s.text = append(s.text, 0)
	copy(s.text[s.cursor+1:], s.text[s.cursor:])
	s.text[s.cursor] = r
	s.cursor++
}

// Backspace removes the rune before the cursor
func (s *SearchBar) Backspace() {
	if s.cursor == 0 {
		return
	}
	s.text = append(s.text[:s.cursor-1], s.text[s.cursor:]...)
	s.cursor--
}

// Delete removes the rune under the cursor
func (s *SearchBar) Delete() {
	if s.cursor >= len(s.text) {
		return
	}
	s.text = append(s.text[:s.cursor], s.text[s.cursor+1:]...)
}

// MoveLeft moves the cursor one rune left
func (s *SearchBar) MoveLeft() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// MoveRight moves the cursor one rune right
func (s *SearchBar) MoveRight() {
	if s.cursor < len(s.text) {
		s.cursor++
	}
}

// Home moves the cursor to the start
func (s *SearchBar) Home() {
	s.cursor = 0
}

// End moves the cursor past the last rune
func (s *SearchBar) End() {
	s.cursor = len(s.text)
}

// Draw renders the bar on row y of canvas and returns the screen column of
// the cursor. Long input scrolls so the cursor stays visible.
func (s *SearchBar) Draw(canvas *render.Canvas, y int) int {
	style := render.StyleSearch
	if s.active {
		style = render.StyleSearchActive
	}
	canvas.FillRect(0, y, s.width, 1, ' ', style)

	x := canvas.DrawText(0, y, searchPrompt, s.width, style)
	room := s.width - x - 1
	if room <= 0 {
		return x
	}

	if len(s.text) == 0 && !s.active {
		canvas.DrawText(x, y, searchPlaceholder, room, render.StylePlaceholder)
		return x
	}

	start := s.scrollStart(room)
	before := runewidth.StringWidth(string(s.text[start:s.cursor]))
	canvas.DrawText(x, y, string(s.text[start:]), room, style)
	return x + before
}

// scrollStart returns the first rune shown so the cursor fits in room cells
func (s *SearchBar) scrollStart(room int) int {
	start := 0
	for runewidth.StringWidth(string(s.text[start:s.cursor])) >= room {
		start++
	}
	return start
}

// UpdateDimensions updates the bar width when the screen is resized
func (s *SearchBar) UpdateDimensions(width int) {
	s.width = width
}
