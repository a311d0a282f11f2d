package ui

import (
	"github.com/gdamore/tcell/v2"

	"mapview/internal/debug"
	"mapview/internal/geo"
	"mapview/internal/render"
	"mapview/internal/viewer"
)

// MapView displays the session's current map image and marker
type MapView struct {
	renderer   *render.MapRenderer
	projection *geo.Projection
	canvas     *render.Canvas
	width      int
	height     int
}

// NewMapView creates a map view filling width x height cells
func NewMapView(width, height int, session *viewer.Session) *MapView {
	imgW, imgH := session.ImageSize()
	state := session.State()

	projection := geo.NewProjection(state.Center(), state.Zoom(), imgW, imgH)
	canvas := render.NewCanvas(width, height)
	renderer := render.NewMapRenderer(projection, imgW, imgH, canvas)

	return &MapView{
		renderer:   renderer,
		projection: projection,
		canvas:     canvas,
		width:      width,
		height:     height,
	}
}

// Draw renders the committed viewport of the session to the screen
func (m *MapView) Draw(screen tcell.Screen, session *viewer.Session) {
	m.canvas.Clear()

	m.syncProjection(session)

	m.renderer.RenderMap(session.Image())

	m.renderer.RenderMarker(session.State().Marker())

	m.canvas.Blit(screen, 0, 0)
}

// syncProjection rebuilds the projection when the center or zoom changed
func (m *MapView) syncProjection(session *viewer.Session) {
	state := session.State()
	imgW, imgH := session.ImageSize()

	if m.projection.Center() == state.Center() && m.projection.Zoom() == state.Zoom() {
		return
	}

	m.projection = geo.NewProjection(state.Center(), state.Zoom(), imgW, imgH)
	m.renderer.UpdateProjection(m.projection)

	if !debug.Enabled() {
		return
	}
	bounds := m.projection.GetBounds()
	debug.Log("visible bounds",
		"min_lat", bounds.MinLat, "max_lat", bounds.MaxLat,
		"min_lon", bounds.MinLon, "max_lon", bounds.MaxLon)
}

// UpdateDimensions updates the view dimensions when the screen is resized
func (m *MapView) UpdateDimensions(width, height int) {
	m.width = width
	m.height = height

	m.canvas = render.NewCanvas(width, height)
	m.renderer.UpdateCanvas(m.canvas)
}
