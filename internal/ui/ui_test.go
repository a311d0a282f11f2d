package ui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapview/internal/geo"
	"mapview/internal/mapreq"
	"mapview/internal/render"
	"mapview/internal/viewer"
	"mapview/internal/viewport"
)

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (s *stubFetcher) FetchImage(ctx context.Context, r mapreq.Request) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

type stubGeocoder struct {
	queries []string
	match   mapreq.Match
	err     error
}

func (s *stubGeocoder) Geocode(ctx context.Context, query string) (mapreq.Match, error) {
	s.queries = append(s.queries, query)
	return s.match, s.err
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 45))
	for y := 0; y < 45; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 220, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestApp(t *testing.T, fetcher *stubFetcher, geocoder *stubGeocoder) (*App, tcell.SimulationScreen) {
	t.Helper()

	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)

	v, err := viewport.New(50)
	require.NoError(t, err)

	session := viewer.NewSession(v, mapreq.NewBuilder(mapreq.Options{}), fetcher, geocoder, nil, viewer.Options{})
	require.NoError(t, session.Start(context.Background()))

	app := newApp(screen, session)
	t.Cleanup(app.cleanup)
	return app, screen
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func char(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func rowText(screen tcell.SimulationScreen, y int) string {
	width, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		name   string
		ev     *tcell.EventKey
		want   viewer.Action
		wantOK bool
	}{
		{"left", key(tcell.KeyLeft), viewer.ActionPanWest, true},
		{"right", key(tcell.KeyRight), viewer.ActionPanEast, true},
		{"up", key(tcell.KeyUp), viewer.ActionPanNorth, true},
		{"down", key(tcell.KeyDown), viewer.ActionPanSouth, true},
		{"page up", key(tcell.KeyPgUp), viewer.ActionZoomIn, true},
		{"page down", key(tcell.KeyPgDn), viewer.ActionZoomOut, true},
		{"reset", char('r'), viewer.ActionReset, true},
		{"style", char('t'), viewer.ActionToggleStyle, true},
		{"plus is not zoom", char('+'), 0, false},
		{"home", key(tcell.KeyHome), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KeyAction(tt.ev)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSearchBarEditing(t *testing.T) {
	s := NewSearchBar(40)
	for _, r := range "Pars" {
		s.Insert(r)
	}
	s.MoveLeft()
	s.Insert('i')
	assert.Equal(t, "Paris", s.Text())

	s.End()
	s.Backspace()
	assert.Equal(t, "Pari", s.Text())

	s.Home()
	s.Delete()
	assert.Equal(t, "ari", s.Text())

	s.Home()
	s.Backspace()
	assert.Equal(t, "ari", s.Text(), "backspace at the start is a no-op")

	s.Clear()
	assert.Empty(t, s.Text())
}

func TestSearchBarScrollsToCursor(t *testing.T) {
	s := NewSearchBar(20)
	s.SetActive(true)
	s.SetText(strings.Repeat("x", 30))

	canvas := render.NewCanvas(20, 1)
	col := s.Draw(canvas, 0)
	assert.Less(t, col, 20)
	assert.Equal(t, 'x', canvas.Get(col-1, 0).Char)
}

func TestSearchBarPlaceholder(t *testing.T) {
	s := NewSearchBar(60)
	canvas := render.NewCanvas(60, 1)
	s.Draw(canvas, 0)

	var b strings.Builder
	for x := 0; x < 60; x++ {
		b.WriteRune(canvas.Get(x, 0).Char)
	}
	assert.Contains(t, b.String(), searchPlaceholder)
}

func TestAppPanAndZoom(t *testing.T) {
	fetcher := &stubFetcher{data: testImage(t)}
	app, _ := newTestApp(t, fetcher, &stubGeocoder{})

	start := app.session.State().Center()

	assert.True(t, app.handleEvent(key(tcell.KeyRight)))
	assert.InDelta(t, start.Lon()+viewport.MoveStep, app.session.State().Center().Lon(), 1e-9)

	assert.True(t, app.handleEvent(key(tcell.KeyLeft)))
	assert.Equal(t, start, app.session.State().Center())

	assert.True(t, app.handleEvent(key(tcell.KeyPgUp)))
	assert.Equal(t, 9, app.session.State().Zoom())
	assert.Equal(t, 4, fetcher.calls)
}

func TestAppQuit(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{data: testImage(t)}, &stubGeocoder{})

	assert.False(t, app.handleEvent(char('q')))
	assert.False(t, app.handleEvent(key(tcell.KeyEscape)))
	assert.False(t, app.handleEvent(key(tcell.KeyCtrlC)))
}

func TestAppSearch(t *testing.T) {
	paris := geo.NewCoordinate(2.351499, 48.856663)
	geocoder := &stubGeocoder{match: mapreq.Match{Coordinate: paris, Name: "Paris"}}
	app, screen := newTestApp(t, &stubFetcher{data: testImage(t)}, geocoder)

	app.handleEvent(char('/'))
	require.Equal(t, FocusSearch, app.focus)
	assert.True(t, app.searchBar.Active())

	for _, r := range "Paris" {
		app.handleEvent(char(r))
	}
	assert.True(t, app.handleEvent(char('q')), "q is text while searching")
	app.handleEvent(key(tcell.KeyBackspace2))
	app.handleEvent(key(tcell.KeyEnter))

	assert.Equal(t, []string{"Paris"}, geocoder.queries)
	assert.Equal(t, FocusMap, app.focus)
	assert.False(t, app.searchBar.Active())
	assert.Equal(t, paris, app.session.State().Marker())
	assert.Equal(t, paris, app.session.State().Center())

	app.render()
	assert.Contains(t, rowText(screen, 23), "Found: Paris")

	app.handleEvent(char('r'))
	assert.Empty(t, app.searchBar.Text())
	assert.Equal(t, viewport.DefaultCenter, app.session.State().Center())
}

func TestAppSearchFailureKeepsFocus(t *testing.T) {
	geocoder := &stubGeocoder{err: mapreq.ErrNoMatch}
	app, screen := newTestApp(t, &stubFetcher{data: testImage(t)}, geocoder)

	app.handleEvent(char('/'))
	app.handleEvent(char('x'))
	app.handleEvent(key(tcell.KeyEnter))

	assert.Equal(t, FocusSearch, app.focus)
	assert.Equal(t, viewport.DefaultCenter, app.session.State().Marker())

	app.render()
	assert.Contains(t, rowText(screen, 23), "Object not found.")

	app.handleEvent(key(tcell.KeyEscape))
	assert.Equal(t, FocusMap, app.focus)
	assert.Equal(t, "x", app.searchBar.Text())
}

func TestAppFetchFailureKeepsState(t *testing.T) {
	fetcher := &stubFetcher{data: testImage(t)}
	app, screen := newTestApp(t, fetcher, &stubGeocoder{})

	fetcher.err = errors.New("connection refused")
	app.handleEvent(key(tcell.KeyPgDn))

	assert.Equal(t, 8, app.session.State().Zoom())
	app.render()
	assert.Contains(t, rowText(screen, 23), "Request failed: connection refused")
}

func TestAppRenderStatus(t *testing.T) {
	app, screen := newTestApp(t, &stubFetcher{data: testImage(t)}, &stubGeocoder{})

	app.render()
	status := rowText(screen, 23)
	assert.Contains(t, status, "37.618423,55.751244")
	assert.Contains(t, status, "z8")
	assert.Contains(t, status, "standard")

	app.handleEvent(char('t'))
	app.render()
	assert.Contains(t, rowText(screen, 23), "scheme")

	r, _, _, _ := screen.GetContent(40, 10)
	assert.Equal(t, '▀', r)
}

func TestAppResize(t *testing.T) {
	app, screen := newTestApp(t, &stubFetcher{data: testImage(t)}, &stubGeocoder{})

	screen.SetSize(40, 12)
	app.handleEvent(tcell.NewEventResize(40, 12))
	app.render()

	assert.Contains(t, rowText(screen, 11), "z8")
	assert.Equal(t, 10, app.mapView.canvas.Height())
}

func TestAppCursorFollowsSearchFocus(t *testing.T) {
	app, screen := newTestApp(t, &stubFetcher{data: testImage(t)}, &stubGeocoder{})

	app.render()
	_, _, visible := screen.GetCursor()
	assert.False(t, visible)

	app.handleEvent(char('/'))
	app.handleEvent(char('a'))
	app.render()
	x, y, visible := screen.GetCursor()
	assert.True(t, visible)
	assert.Equal(t, 22, y)
	assert.Equal(t, len(searchPrompt)+1, x)
}
