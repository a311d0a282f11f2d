// Package viewport holds the map view state: center, zoom, marker and style.
// Every transition is a method on the Viewport value and returns a new,
// valid Viewport; nothing here performs I/O.
package viewport

import (
	"errors"
	"fmt"

	"mapview/internal/geo"
)

const (
	MinZoom = 0
	MaxZoom = 17

	// MoveStep is the pan distance in degrees for a single key press
	MoveStep = 0.05
)

// ErrInvalidScale is returned when the scale percent is outside 1-100
var ErrInvalidScale = errors.New("scale must be in the range 1-100")

// DefaultCenter is the view and marker position on startup and reset (Moscow)
var DefaultCenter = geo.NewCoordinate(37.618423, 55.751244)

// Style represents the map rendering scheme
type Style int

const (
	StyleStandard Style = iota
	StyleScheme
)

// String returns a string representation of the style
func (s Style) String() string {
	switch s {
	case StyleStandard:
		return "standard"
	case StyleScheme:
		return "scheme"
	default:
		return "unknown"
	}
}

// Viewport is the geographic center, zoom, marker and style that together
// determine the requested map image
type Viewport struct {
	center geo.Coordinate
	zoom   int
	marker geo.Coordinate
	style  Style
}

// New creates the initial viewport from a scale percent in 1-100
func New(rawScalePercent int) (Viewport, error) {
	zoom, err := ZoomFromScale(rawScalePercent)
	if err != nil {
		return Viewport{}, err
	}

	return Viewport{
		center: DefaultCenter,
		zoom:   zoom,
		marker: DefaultCenter,
		style:  StyleStandard,
	}, nil
}

// ZoomFromScale converts a scale percent to a zoom level: round(0.17 * percent)
// clamped to [MinZoom, MaxZoom]. Rounding is half-to-even on the exact value
// 17*percent/100, so 50 maps to 8.
func ZoomFromScale(rawScalePercent int) (int, error) {
	if rawScalePercent <= 0 || rawScalePercent > 100 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidScale, rawScalePercent)
	}

	numerator := 17 * rawScalePercent
	zoom, rem := numerator/100, numerator%100
	if rem > 50 || (rem == 50 && zoom%2 == 1) {
		zoom++
	}

	return clampZoom(zoom), nil
}

func clampZoom(zoom int) int {
	return max(MinZoom, min(zoom, MaxZoom))
}

// Center returns the view center
func (v Viewport) Center() geo.Coordinate {
	return v.center
}

// Zoom returns the zoom level
func (v Viewport) Zoom() int {
	return v.zoom
}

// Marker returns the pin position
func (v Viewport) Marker() geo.Coordinate {
	return v.marker
}

// Style returns the rendering style
func (v Viewport) Style() Style {
	return v.style
}

// PanLongitude moves the center east by delta degrees (west when negative)
func (v Viewport) PanLongitude(delta float64) Viewport {
	v.center = v.center.Add(delta, 0)
	return v
}

// PanLatitude moves the center north by delta degrees (south when negative)
func (v Viewport) PanLatitude(delta float64) Viewport {
	v.center = v.center.Add(0, delta)
	return v
}

// ZoomIn increases the zoom level, stopping at MaxZoom
func (v Viewport) ZoomIn() Viewport {
	v.zoom = clampZoom(v.zoom + 1)
	return v
}

// ZoomOut decreases the zoom level, stopping at MinZoom
func (v Viewport) ZoomOut() Viewport {
	v.zoom = clampZoom(v.zoom - 1)
	return v
}

// SetMarkerAndRecenter moves both the pin and the center to c
func (v Viewport) SetMarkerAndRecenter(c geo.Coordinate) Viewport {
	v.marker = c
	v.center = c
	return v
}

// ResetToDefault restores center and marker to DefaultCenter.
// Zoom and style are kept.
func (v Viewport) ResetToDefault() Viewport {
	v.center = DefaultCenter
	v.marker = DefaultCenter
	return v
}

// ToggleStyle flips between the standard and scheme styles
func (v Viewport) ToggleStyle() Viewport {
	if v.style == StyleStandard {
		v.style = StyleScheme
	} else {
		v.style = StyleStandard
	}
	return v
}
