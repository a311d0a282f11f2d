// Package mapreq derives static-map and geocoder requests from a viewport
// and parses geocoder responses. It performs no I/O.
package mapreq

import (
	"errors"
	"strconv"
	"strings"

	"mapview/internal/viewport"
)

const (
	DefaultMapEndpoint     = "http://static-maps.yandex.ru/1.x/"
	DefaultGeocodeEndpoint = "https://geocode-maps.yandex.ru/1.x/"
	DefaultMarkerIcon      = "pm2rdm"
	geocodeFormat          = "json"
)

// ErrEmptyQuery is returned for a search with no text
var ErrEmptyQuery = errors.New("search query is empty")

// Options configures a Builder. Empty fields fall back to the defaults.
type Options struct {
	MapEndpoint     string
	GeocodeEndpoint string
	APIKey          string
	MarkerIcon      string
}

// Builder produces request descriptors for the map and geocoder services
type Builder struct {
	mapEndpoint     string
	geocodeEndpoint string
	apiKey          string
	markerIcon      string
}

// NewBuilder creates a new request builder
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		mapEndpoint:     opts.MapEndpoint,
		geocodeEndpoint: opts.GeocodeEndpoint,
		apiKey:          opts.APIKey,
		markerIcon:      opts.MarkerIcon,
	}

	if b.mapEndpoint == "" {
		b.mapEndpoint = DefaultMapEndpoint
	}
	if b.geocodeEndpoint == "" {
		b.geocodeEndpoint = DefaultGeocodeEndpoint
	}
	if b.markerIcon == "" {
		b.markerIcon = DefaultMarkerIcon
	}

	return b
}

// StyleCode maps a viewport style to the map service layer code
func StyleCode(s viewport.Style) string {
	if s == viewport.StyleScheme {
		return "skl"
	}
	return "map"
}

// ImageRequest describes the static map image for the viewport at the given
// pixel size. Sizes are passed through unchecked.
func (b *Builder) ImageRequest(v viewport.Viewport, width, height int) Request {
	center, marker := v.Center(), v.Marker()

	return Request{
		Kind:     KindImage,
		Endpoint: b.mapEndpoint,
		params: []Param{
			{Key: "ll", Value: center.String()},
			{Key: "z", Value: strconv.Itoa(v.Zoom())},
			{Key: "size", Value: strconv.Itoa(width) + "," + strconv.Itoa(height)},
			{Key: "l", Value: StyleCode(v.Style())},
			{Key: "pt", Value: marker.String() + "," + b.markerIcon},
		},
	}
}

// ValidateQuery rejects blank search text
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// GeocodeRequest describes a geocoder lookup for free text
func (b *Builder) GeocodeRequest(query string) (Request, error) {
	if err := ValidateQuery(query); err != nil {
		return Request{}, err
	}

	params := make([]Param, 0, 3)
	if b.apiKey != "" {
		params = append(params, Param{Key: "apikey", Value: b.apiKey})
	}
	params = append(params,
		Param{Key: "geocode", Value: query},
		Param{Key: "format", Value: geocodeFormat},
	)

	return Request{
		Kind:     KindGeocode,
		Endpoint: b.geocodeEndpoint,
		params:   params,
	}, nil
}
