package viewer

import (
	"context"
	"fmt"

	"mapview/internal/geo"
	"mapview/internal/mapreq"
)

// Geocoder turns free text into the first matching place
type Geocoder interface {
	Geocode(ctx context.Context, query string) (mapreq.Match, error)
}

// Doer executes a request descriptor and returns the response body
type Doer interface {
	Do(ctx context.Context, r mapreq.Request) ([]byte, error)
}

// RemoteGeocoder queries the geocoder web service
type RemoteGeocoder struct {
	builder *mapreq.Builder
	client  Doer
}

// NewRemoteGeocoder creates a geocoder backed by the web service
func NewRemoteGeocoder(builder *mapreq.Builder, client Doer) *RemoteGeocoder {
	return &RemoteGeocoder{builder: builder, client: client}
}

// Geocode builds the lookup, performs it and parses the first result
func (g *RemoteGeocoder) Geocode(ctx context.Context, query string) (mapreq.Match, error) {
	req, err := g.builder.GeocodeRequest(query)
	if err != nil {
		return mapreq.Match{}, err
	}

	payload, err := g.client.Do(ctx, req)
	if err != nil {
		return mapreq.Match{}, err
	}

	return mapreq.ParseGeocodeMatch(payload)
}

// PlaceGeocoder resolves names against the local populated places gazetteer
type PlaceGeocoder struct {
	gazetteer *geo.Gazetteer
}

// NewPlaceGeocoder creates a geocoder backed by a gazetteer
func NewPlaceGeocoder(gazetteer *geo.Gazetteer) *PlaceGeocoder {
	return &PlaceGeocoder{gazetteer: gazetteer}
}

// Geocode looks the name up in the gazetteer
func (g *PlaceGeocoder) Geocode(ctx context.Context, query string) (mapreq.Match, error) {
	if err := mapreq.ValidateQuery(query); err != nil {
		return mapreq.Match{}, err
	}

	place, ok := g.gazetteer.Lookup(query)
	if !ok {
		return mapreq.Match{}, fmt.Errorf("%w: %q", mapreq.ErrNoMatch, query)
	}

	return mapreq.Match{
		Coordinate: place.Coordinate,
		Name:       place.Name,
	}, nil
}
