package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Style definitions for the bars drawn around the map
var (
	StyleStatus       = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	StyleMessage      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorDarkSlateGray).Bold(true)
	StyleSearch       = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorBlack)
	StyleSearchActive = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	StyleCursor       = tcell.StyleDefault.Reverse(true)
	StylePlaceholder  = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorBlack)
	StyleHelp         = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorDarkSlateGray)
)

const markerGlyph = '▼'

// Marker colors: red like the service's pin, black when the map underneath is red too
var (
	markerColor    = colorful.Color{R: 0.86, G: 0.08, B: 0.08}
	markerFallback = colorful.Color{R: 0, G: 0, B: 0}
)

// toTerminalColor converts a pixel to a 24-bit terminal color.
// Fully transparent pixels keep the terminal's default color.
func toTerminalColor(c colorful.Color, ok bool) tcell.Color {
	if !ok {
		return tcell.ColorDefault
	}
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// markerStyle picks a glyph color that stands out against bg
func markerStyle(bg tcell.Color) tcell.Style {
	fg := markerColor
	if bg != tcell.ColorDefault {
		r, g, b := bg.RGB()
		under := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		if under.DistanceLab(markerColor) < 0.25 {
			fg = markerFallback
		}
	}
	return tcell.StyleDefault.Foreground(toTerminalColor(fg, true)).Background(bg).Bold(true)
}
