package geo

import (
	"math"
	"strconv"
)

const nanosPerDegree = 1e9

// Coordinate is a longitude/latitude pair in degrees.
// Both axes are stored as whole nanodegrees, so a pan by d followed by a pan
// by -d lands exactly where it started. Deltas under half a nanodegree round
// to zero; values saturate at ±math.MaxInt64 nanodegrees (about ±9.2e9
// degrees), past which the round trip no longer holds.
type Coordinate struct {
	lon int64
	lat int64
}

// NewCoordinate creates a coordinate from longitude and latitude in degrees
func NewCoordinate(lon, lat float64) Coordinate {
	return Coordinate{lon: toNanos(lon), lat: toNanos(lat)}
}

// Lon returns the longitude in degrees
func (c Coordinate) Lon() float64 {
	return float64(c.lon) / nanosPerDegree
}

// Lat returns the latitude in degrees
func (c Coordinate) Lat() float64 {
	return float64(c.lat) / nanosPerDegree
}

// Add shifts the coordinate by the given deltas in degrees.
// No geographic bounds are applied.
func (c Coordinate) Add(dLon, dLat float64) Coordinate {
	return Coordinate{
		lon: addSaturating(c.lon, toNanos(dLon)),
		lat: addSaturating(c.lat, toNanos(dLat)),
	}
}

// String formats the coordinate as "lon,lat"
func (c Coordinate) String() string {
	return FormatDegrees(c.Lon()) + "," + FormatDegrees(c.Lat())
}

// FormatDegrees renders degrees with the shortest decimal that parses back to the same value
func FormatDegrees(deg float64) string {
	return strconv.FormatFloat(deg, 'f', -1, 64)
}

// toNanos rounds half away from zero, which keeps toNanos(-d) == -toNanos(d)
func toNanos(deg float64) int64 {
	n := math.Round(deg * nanosPerDegree)
	switch {
	case math.IsNaN(n):
		return 0
	case n >= math.MaxInt64:
		return math.MaxInt64
	case n <= math.MinInt64:
		return math.MinInt64
	}
	return int64(n)
}

func addSaturating(a, b int64) int64 {
	sum := a + b
	if a > 0 && b > 0 && sum < 0 {
		return math.MaxInt64
	}
	if a < 0 && b < 0 && sum >= 0 {
		return math.MinInt64
	}
	return sum
}
