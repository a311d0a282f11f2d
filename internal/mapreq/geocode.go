package mapreq

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"mapview/internal/geo"
)

// ErrNoMatch is returned when a geocoder response holds no usable coordinate
var ErrNoMatch = errors.New("object not found")

// Match is the first candidate of a geocoder response
type Match struct {
	Coordinate  geo.Coordinate
	Name        string
	Description string
}

// geocodeResponse mirrors the part of the geocoder JSON we read. Pointers
// distinguish missing objects from empty ones.
type geocodeResponse struct {
	Response *struct {
		GeoObjectCollection *struct {
			FeatureMember []struct {
				GeoObject *struct {
					Name        string `json:"name"`
					Description string `json:"description"`
					Point       *struct {
						Pos *string `json:"pos"`
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

// ParseGeocodeResult extracts the first candidate's coordinate
func ParseGeocodeResult(payload []byte) (geo.Coordinate, error) {
	match, err := ParseGeocodeMatch(payload)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return match.Coordinate, nil
}

// ParseGeocodeMatch extracts the first candidate with its name.
// Malformed payloads and empty result lists both yield ErrNoMatch.
func ParseGeocodeMatch(payload []byte) (Match, error) {
	var resp geocodeResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return Match{}, fmt.Errorf("%w: malformed response: %v", ErrNoMatch, err)
	}

	if resp.Response == nil || resp.Response.GeoObjectCollection == nil {
		return Match{}, fmt.Errorf("%w: missing GeoObjectCollection", ErrNoMatch)
	}

	members := resp.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return Match{}, ErrNoMatch
	}

	obj := members[0].GeoObject
	if obj == nil || obj.Point == nil || obj.Point.Pos == nil {
		return Match{}, fmt.Errorf("%w: first result has no position", ErrNoMatch)
	}

	coord, err := ParsePos(*obj.Point.Pos)
	if err != nil {
		return Match{}, err
	}

	return Match{
		Coordinate:  coord,
		Name:        obj.Name,
		Description: obj.Description,
	}, nil
}

// ParsePos parses a "<longitude> <latitude>" position string
func ParsePos(pos string) (geo.Coordinate, error) {
	fields := strings.Fields(pos)
	if len(fields) != 2 {
		return geo.Coordinate{}, fmt.Errorf("%w: bad position %q", ErrNoMatch, pos)
	}

	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsInf(lon, 0) || math.IsNaN(lon) {
		return geo.Coordinate{}, fmt.Errorf("%w: bad longitude %q", ErrNoMatch, fields[0])
	}

	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || math.IsInf(lat, 0) || math.IsNaN(lat) {
		return geo.Coordinate{}, fmt.Errorf("%w: bad latitude %q", ErrNoMatch, fields[1])
	}

	return geo.NewCoordinate(lon, lat), nil
}
