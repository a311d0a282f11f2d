package geo

import (
	"math"
)

const (
	tileSize = 256.0
	// First eccentricity of the WGS84 ellipsoid. The static map service
	// renders in ellipsoidal Mercator, not the spherical web variant.
	eccentricity = 0.0818191908426
)

// Point represents a pixel coordinate in the rendered map image
type Point struct {
	X int
	Y int
}

// Projection maps coordinates to pixels of a static map image rendered
// around a center coordinate at a given zoom level
type Projection struct {
	center      Coordinate
	zoom        int
	imageWidth  int
	imageHeight int
	worldSize   float64
	centerX     float64
	centerY     float64
}

// NewProjection creates a Mercator projection for an image of the given size
func NewProjection(center Coordinate, zoom, imageWidth, imageHeight int) *Projection {
	p := &Projection{
		center:      center,
		zoom:        zoom,
		imageWidth:  imageWidth,
		imageHeight: imageHeight,
	}

	p.calculateScale()
	return p
}

// calculateScale computes the world size in pixels and the center's world position
func (p *Projection) calculateScale() {
	p.worldSize = tileSize * math.Pow(2, float64(p.zoom))
	p.centerX, p.centerY = p.worldXY(p.center)
}

func (p *Projection) worldXY(c Coordinate) (float64, float64) {
	x := (c.Lon() + 180.0) / 360.0 * p.worldSize
	y := (0.5 - mercatorY(c.Lat())/(2*math.Pi)) * p.worldSize
	return x, y
}

// mercatorY is the ellipsoidal Mercator northing for a latitude, in radians of arc
func mercatorY(lat float64) float64 {
	phi := lat * math.Pi / 180.0
	sin := eccentricity * math.Sin(phi)
	return math.Log(math.Tan(math.Pi/4+phi/2) * math.Pow((1-sin)/(1+sin), eccentricity/2))
}

// inverseMercatorY converts a northing back to latitude in degrees
func inverseMercatorY(y float64) float64 {
	t := math.Exp(-y)
	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < 10; i++ {
		sin := eccentricity * math.Sin(phi)
		phi = math.Pi/2 - 2*math.Atan(t*math.Pow((1-sin)/(1+sin), eccentricity/2))
	}
	return phi * 180.0 / math.Pi
}

// Project converts a coordinate to image pixels with (0, 0) at top-left.
// The result is only meaningful when IsInBounds holds.
func (p *Projection) Project(c Coordinate) Point {
	x, y := p.worldXY(c)

	return Point{
		X: int(math.Round(x-p.centerX)) + p.imageWidth/2,
		Y: int(math.Round(y-p.centerY)) + p.imageHeight/2,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Unproject converts image pixels back to a coordinate
func (p *Projection) Unproject(x, y int) Coordinate {
	worldX := p.centerX + float64(x-p.imageWidth/2)
	worldY := p.centerY + float64(y-p.imageHeight/2)

	lon := worldX/p.worldSize*360.0 - 180.0
	lat := inverseMercatorY((0.5 - worldY/p.worldSize) * 2 * math.Pi)
	return NewCoordinate(lon, lat)
}

// IsInBounds checks if a coordinate falls inside the image. Latitudes at
// or beyond the poles have no Mercator position and are never in bounds.
func (p *Projection) IsInBounds(c Coordinate) bool {
	_, y := p.worldXY(c)
	if !finite(y) || !finite(p.centerY) {
		return false
	}

	point := p.Project(c)
	return point.X >= 0 && point.X < p.imageWidth &&
		point.Y >= 0 && point.Y < p.imageHeight
}

// GetBounds returns the geographic bounds covered by the image
func (p *Projection) GetBounds() *Bounds {
	topLeft := p.Unproject(0, 0)
	bottomRight := p.Unproject(p.imageWidth-1, p.imageHeight-1)

	return &Bounds{
		MinLat: math.Min(topLeft.Lat(), bottomRight.Lat()),
		MaxLat: math.Max(topLeft.Lat(), bottomRight.Lat()),
		MinLon: math.Min(topLeft.Lon(), bottomRight.Lon()),
		MaxLon: math.Max(topLeft.Lon(), bottomRight.Lon()),
	}
}

// Center returns the coordinate at the middle of the image
func (p *Projection) Center() Coordinate {
	return p.center
}

// Zoom returns the zoom level
func (p *Projection) Zoom() int {
	return p.zoom
}

// Bounds represents a geographic bounding box
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains checks if a coordinate is within the bounds
func (b *Bounds) Contains(c Coordinate) bool {
	return c.Lat() >= b.MinLat && c.Lat() <= b.MaxLat &&
		c.Lon() >= b.MinLon && c.Lon() <= b.MaxLon
}
