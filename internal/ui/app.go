package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"mapview/internal/debug"
	"mapview/internal/render"
	"mapview/internal/viewer"
)

// barRows is the number of rows below the map: search bar and status bar
const barRows = 2

// Focus is the widget receiving key events
type Focus int

const (
	FocusMap Focus = iota
	FocusSearch
)

// App is the main application controller
type App struct {
	screen    tcell.Screen
	session   *viewer.Session
	mapView   *MapView
	bars      *render.Canvas
	searchBar *SearchBar
	statusBar *StatusBar
	focus     Focus
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates a new application on the terminal
func NewApp(session *viewer.Session) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	return newApp(screen, session), nil
}

// newApp builds the views for an initialized screen
func newApp(screen tcell.Screen, session *viewer.Session) *App {
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	width, height := screen.Size()

	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		screen:    screen,
		session:   session,
		mapView:   NewMapView(width, mapRows(height), session),
		bars:      render.NewCanvas(width, barRows),
		searchBar: NewSearchBar(width),
		statusBar: NewStatusBar(width),
		focus:     FocusMap,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func mapRows(height int) int {
	if height <= barRows {
		return 0
	}
	return height - barRows
}

// Run starts the application main loop. The map only changes in response
// to keys, so the loop blocks on the next event.
func (a *App) Run() error {
	defer a.cleanup()

	a.render()

	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil // screen finalized
		}
		if !a.handleEvent(ev) {
			return nil // Quit requested
		}
		a.render()
	}
}

// render renders the current view to the screen
func (a *App) render() {
	a.screen.Clear()

	a.mapView.Draw(a.screen, a.session)

	a.bars.Clear()
	cursor := a.searchBar.Draw(a.bars, 0)
	a.statusBar.Draw(a.bars, 1, a.session)

	_, height := a.screen.Size()
	top := height - barRows
	a.bars.Blit(a.screen, 0, top)

	if a.searchBar.Active() {
		a.screen.ShowCursor(cursor, top)
	} else {
		a.screen.HideCursor()
	}

	a.screen.Show()
}

// handleEvent processes keyboard events and reports whether to keep running
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if a.focus == FocusSearch {
			a.handleSearchKey(ev)
			return true
		}
		return a.handleMapKey(ev)

	case *tcell.EventResize:
		a.handleResize()
	}

	return true
}

// handleMapKey handles keys while the map has focus
func (a *App) handleMapKey(ev *tcell.EventKey) bool {
	if action, ok := KeyAction(ev); ok {
		a.busy(func(ctx context.Context) error {
			return a.session.Apply(ctx, action)
		})
		if action == viewer.ActionReset {
			a.searchBar.Clear()
		}
		return true
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		return false

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false

		case '/':
			a.setFocus(FocusSearch)
		}
	}

	return true
}

// handleSearchKey edits the query while the search bar has focus
func (a *App) handleSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.setFocus(FocusMap)

	case tcell.KeyEnter:
		query := a.searchBar.Text()
		err := a.busy(func(ctx context.Context) error {
			return a.session.Search(ctx, query)
		})
		if err == nil {
			a.setFocus(FocusMap)
		}

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.searchBar.Backspace()

	case tcell.KeyDelete:
		a.searchBar.Delete()

	case tcell.KeyLeft:
		a.searchBar.MoveLeft()

	case tcell.KeyRight:
		a.searchBar.MoveRight()

	case tcell.KeyHome, tcell.KeyCtrlA:
		a.searchBar.Home()

	case tcell.KeyEnd, tcell.KeyCtrlE:
		a.searchBar.End()

	case tcell.KeyCtrlU:
		a.searchBar.Clear()

	case tcell.KeyRune:
		a.searchBar.Insert(ev.Rune())
	}
}

// busy shows the loading indicator while fn talks to the network
func (a *App) busy(fn func(ctx context.Context) error) error {
	a.statusBar.SetBusy(true)
	a.render()
	defer a.statusBar.SetBusy(false)

	err := fn(a.ctx)
	if err != nil {
		debug.Log("request finished with error", "error", err)
	}
	return err
}

func (a *App) setFocus(f Focus) {
	a.focus = f
	a.searchBar.SetActive(f == FocusSearch)
}

// handleResize handles terminal resize events
func (a *App) handleResize() {
	a.screen.Sync()
	width, height := a.screen.Size()

	a.mapView.UpdateDimensions(width, mapRows(height))
	a.bars = render.NewCanvas(width, barRows)
	a.searchBar.UpdateDimensions(width)
	a.statusBar.UpdateDimensions(width)
}

// cleanup performs cleanup before exit
func (a *App) cleanup() {
	if a.cancel != nil {
		a.cancel()
	}

	if a.screen != nil {
		a.screen.Fini()
	}
}
