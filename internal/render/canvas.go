package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Canvas is an off-screen grid of terminal cells. The map image, the marker
// and the bars are composed here and copied to the screen in one pass.
type Canvas struct {
	width  int
	height int
	cells  [][]Cell
}

// Cell represents a single character cell with style
type Cell struct {
	Char  rune
	Style tcell.Style
}

// NewCanvas creates a new blank canvas
func NewCanvas(width, height int) *Canvas {
	cells := make([][]Cell, height)
	for i := range cells {
		cells[i] = make([]Cell, width)
		// Initialize with spaces and default style
		for j := range cells[i] {
			cells[i][j] = Cell{
				Char:  ' ',
				Style: tcell.StyleDefault,
			}
		}
	}

	return &Canvas{
		width:  width,
		height: height,
		cells:  cells,
	}
}

// Set sets the character and style at the given position
// Coordinates are 0-indexed with (0,0) at top-left
func (c *Canvas) Set(x, y int, char rune, style tcell.Style) {
	if x >= 0 && x < c.width && y >= 0 && y < c.height {
		c.cells[y][x] = Cell{Char: char, Style: style}
	}
}

// Get retrieves the cell at the given position
func (c *Canvas) Get(x, y int) Cell {
	if x >= 0 && x < c.width && y >= 0 && y < c.height {
		return c.cells[y][x]
	}
	return Cell{Char: ' ', Style: tcell.StyleDefault}
}

// Clear resets the entire canvas to spaces with default style
func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = Cell{Char: ' ', Style: tcell.StyleDefault}
		}
	}
}

// DrawText draws a string at the given position and returns the number of
// columns used. Wide runes take two columns; text is clipped at maxWidth.
func (c *Canvas) DrawText(x, y int, text string, maxWidth int, style tcell.Style) int {
	col := 0
	for _, char := range text {
		w := runewidth.RuneWidth(char)
		if w == 0 {
			continue
		}
		if col+w > maxWidth {
			break
		}
		c.Set(x+col, y, char, style)
		if w == 2 {
			c.Set(x+col+1, y, 0, style)
		}
		col += w
	}
	return col
}

// FillRect fills a rectangle with a character
func (c *Canvas) FillRect(x, y, width, height int, char rune, style tcell.Style) {
	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			c.Set(x+dx, y+dy, char, style)
		}
	}
}

// Width returns the canvas width
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the canvas height
func (c *Canvas) Height() int {
	return c.height
}

// Blit renders the canvas to a tcell screen
func (c *Canvas) Blit(screen tcell.Screen, offsetX, offsetY int) {
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			cell := c.cells[y][x]
			if cell.Char == 0 {
				// right half of a wide rune drawn in the previous column
				continue
			}
			screen.SetContent(offsetX+x, offsetY+y, cell.Char, nil, cell.Style)
		}
	}
}
