package render

import (
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"

	"mapview/internal/debug"
	"mapview/internal/geo"
)

// MapRenderer draws a fetched map image and its marker onto a canvas.
// Each cell shows two image rows with an upper half block: the foreground
// is the top pixel and the background the bottom one.
type MapRenderer struct {
	projection  *geo.Projection
	canvas      *Canvas
	imageWidth  int
	imageHeight int
	layout      image.Rectangle // image area in half-cell pixels
}

// NewMapRenderer creates a new map renderer
func NewMapRenderer(projection *geo.Projection, imageWidth, imageHeight int, canvas *Canvas) *MapRenderer {
	m := &MapRenderer{
		projection:  projection,
		canvas:      canvas,
		imageWidth:  imageWidth,
		imageHeight: imageHeight,
	}
	m.updateLayout()
	return m
}

// updateLayout fits the image into the canvas keeping its aspect ratio
func (m *MapRenderer) updateLayout() {
	m.layout = FitRect(m.imageWidth, m.imageHeight, m.canvas.Width(), m.canvas.Height()*2)
}

// FitRect returns the largest rectangle with the source aspect ratio that
// fits in dstW x dstH, centered
func FitRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}

	w, h := dstW, srcH*dstW/srcW
	if h > dstH {
		w, h = srcW*dstH/srcH, dstH
	}

	x := (dstW - w) / 2
	y := (dstH - h) / 2
	// keep the top edge on a cell boundary so half blocks pair up
	y -= y % 2
	return image.Rect(x, y, x+w, y+h)
}

// RenderMap scales img into the layout and draws it
func (m *MapRenderer) RenderMap(img image.Image) {
	if img == nil || m.layout.Empty() {
		return
	}

	dst := image.NewRGBA(image.Rect(0, 0, m.layout.Dx(), m.layout.Dy()))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	for py := 0; py < dst.Bounds().Dy(); py += 2 {
		for px := 0; px < dst.Bounds().Dx(); px++ {
			top := toTerminalColor(colorful.MakeColor(dst.At(px, py)))

			bottom := tcell.ColorDefault
			if py+1 < dst.Bounds().Dy() {
				bottom = toTerminalColor(colorful.MakeColor(dst.At(px, py+1)))
			}

			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			m.canvas.Set(m.layout.Min.X+px, (m.layout.Min.Y+py)/2, '▀', style)
		}
	}
}

// CellFor returns the canvas cell showing the coordinate
func (m *MapRenderer) CellFor(c geo.Coordinate) (x, y int, ok bool) {
	if m.layout.Empty() || !m.projection.IsInBounds(c) {
		return 0, 0, false
	}

	p := m.projection.Project(c)
	gx := m.layout.Min.X + p.X*m.layout.Dx()/m.imageWidth
	gy := m.layout.Min.Y + p.Y*m.layout.Dy()/m.imageHeight
	return gx, gy / 2, true
}

// RenderMarker draws the pin glyph over the marker position. The service
// draws its own pin, but it rarely survives scaling down to cells.
func (m *MapRenderer) RenderMarker(marker geo.Coordinate) {
	x, y, ok := m.CellFor(marker)
	if !ok {
		debug.Log("marker outside the visible map", "marker", marker.String())
		return
	}

	_, bg, _ := m.canvas.Get(x, y).Style.Decompose()
	m.canvas.Set(x, y, markerGlyph, markerStyle(bg))
}

// UpdateProjection updates the renderer's projection
func (m *MapRenderer) UpdateProjection(projection *geo.Projection) {
	m.projection = projection
}

// UpdateCanvas updates the renderer's canvas
func (m *MapRenderer) UpdateCanvas(canvas *Canvas) {
	m.canvas = canvas
	m.updateLayout()
}
