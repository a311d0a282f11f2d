// Package viewer runs user actions against the viewport: it applies a
// transition, fetches the matching image and only then commits the new state
package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"mapview/internal/debug"
	"mapview/internal/fetch"
	"mapview/internal/geo"
	"mapview/internal/mapreq"
	"mapview/internal/metrics"
	"mapview/internal/viewport"
)

const (
	DefaultWidth  = 600
	DefaultHeight = 450
)

// ImageFetcher returns raw image bytes for an image request
type ImageFetcher interface {
	FetchImage(ctx context.Context, r mapreq.Request) ([]byte, error)
}

// Options configures a Session
type Options struct {
	Width  int     // image width in pixels
	Height int     // image height in pixels
	Step   float64 // pan distance in degrees
}

// Session owns the single viewport of a viewer run together with the image
// currently shown for it
type Session struct {
	builder   *mapreq.Builder
	fetcher   ImageFetcher
	geocoder  Geocoder
	gazetteer *geo.Gazetteer
	opts      Options

	state   viewport.Viewport
	request mapreq.Request
	image   image.Image
	message string
}

// NewSession creates a session around an initial viewport. gazetteer may be
// nil; it only names the place nearest the view center.
func NewSession(state viewport.Viewport, builder *mapreq.Builder, fetcher ImageFetcher, geocoder Geocoder, gazetteer *geo.Gazetteer, opts Options) *Session {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Step == 0 {
		opts.Step = viewport.MoveStep
	}

	return &Session{
		builder:   builder,
		fetcher:   fetcher,
		geocoder:  geocoder,
		gazetteer: gazetteer,
		opts:      opts,
		state:     state,
	}
}

// Start fetches the first image. There is no previous image to fall back
// to, so a failure here is fatal for the caller.
func (s *Session) Start(ctx context.Context) error {
	if err := s.commit(ctx, s.state); err != nil {
		return fmt.Errorf("failed to load initial map: %w", err)
	}
	return nil
}

// Apply performs a key or button action. On failure the viewport and image
// are left as they were and Message describes the problem.
func (s *Session) Apply(ctx context.Context, a Action) error {
	next := a.apply(s.state, s.opts.Step)

	if err := s.commit(ctx, next); err != nil {
		s.fail(a.String(), err)
		return err
	}

	s.message = ""
	metrics.ObserveTransition(a.String(), "ok")
	debug.Log("viewport changed", "action", a.String(), "center", s.state.Center().String(), "zoom", s.state.Zoom())
	return nil
}

// Search geocodes the query, then moves the marker and the center to the
// first result
func (s *Session) Search(ctx context.Context, query string) error {
	const action = "search"

	if err := mapreq.ValidateQuery(query); err != nil {
		s.fail(action, err)
		return err
	}

	match, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		s.fail(action, err)
		return err
	}

	if err := s.commit(ctx, s.state.SetMarkerAndRecenter(match.Coordinate)); err != nil {
		s.fail(action, err)
		return err
	}

	s.message = "Found: " + match.Name
	if match.Name == "" {
		s.message = "Found: " + match.Coordinate.String()
	}
	metrics.ObserveTransition(action, "ok")
	debug.Log("search matched", "query", query, "name", match.Name, "pos", match.Coordinate.String())
	return nil
}

// commit fetches and decodes the image for next and only then replaces the state
func (s *Session) commit(ctx context.Context, next viewport.Viewport) error {
	req := s.builder.ImageRequest(next, s.opts.Width, s.opts.Height)

	data, err := s.fetcher.FetchImage(ctx, req)
	if err != nil {
		return err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode map image: %w", err)
	}

	s.state = next
	s.request = req
	s.image = img
	return nil
}

func (s *Session) fail(action string, err error) {
	s.message = Describe(err)
	metrics.ObserveTransition(action, outcome(err))
	debug.Warn("action failed", "action", action, "error", err)
}

// Describe turns an action error into a user-facing message
func Describe(err error) string {
	var rf *fetch.RequestFailedError
	switch {
	case errors.Is(err, mapreq.ErrEmptyQuery):
		return "Search query must not be empty."
	case errors.Is(err, mapreq.ErrNoMatch):
		return "Object not found."
	case errors.As(err, &rf):
		return fmt.Sprintf("Request failed: HTTP %d (%s)", rf.StatusCode, rf.Reason)
	default:
		return "Request failed: " + err.Error()
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, mapreq.ErrEmptyQuery):
		return "empty_query"
	case errors.Is(err, mapreq.ErrNoMatch):
		return "no_match"
	default:
		return "request_failed"
	}
}

// State returns the committed viewport
func (s *Session) State() viewport.Viewport {
	return s.state
}

// Request returns the image request for the committed viewport
func (s *Session) Request() mapreq.Request {
	return s.request
}

// Image returns the image for the committed viewport, nil before Start
func (s *Session) Image() image.Image {
	return s.image
}

// ImageSize returns the requested image size in pixels
func (s *Session) ImageSize() (int, int) {
	return s.opts.Width, s.opts.Height
}

// Message returns the outcome of the last action, empty after a plain success
func (s *Session) Message() string {
	return s.message
}

// NearestPlace names the gazetteer place closest to the view center
func (s *Session) NearestPlace() string {
	if s.gazetteer == nil {
		return ""
	}
	place, ok := s.gazetteer.Nearest(s.state.Center())
	if !ok {
		return ""
	}
	return place.Name
}
