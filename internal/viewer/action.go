package viewer

import (
	"mapview/internal/viewport"
)

// Action is a discrete user request that changes the viewport
type Action int

const (
	ActionPanWest Action = iota
	ActionPanEast
	ActionPanNorth
	ActionPanSouth
	ActionZoomIn
	ActionZoomOut
	ActionReset
	ActionToggleStyle
)

// String returns a string representation of the action
func (a Action) String() string {
	switch a {
	case ActionPanWest:
		return "pan_west"
	case ActionPanEast:
		return "pan_east"
	case ActionPanNorth:
		return "pan_north"
	case ActionPanSouth:
		return "pan_south"
	case ActionZoomIn:
		return "zoom_in"
	case ActionZoomOut:
		return "zoom_out"
	case ActionReset:
		return "reset"
	case ActionToggleStyle:
		return "toggle_style"
	default:
		return "unknown"
	}
}

// apply runs the viewport transition for the action
func (a Action) apply(v viewport.Viewport, step float64) viewport.Viewport {
	switch a {
	case ActionPanWest:
		return v.PanLongitude(-step)
	case ActionPanEast:
		return v.PanLongitude(step)
	case ActionPanNorth:
		return v.PanLatitude(step)
	case ActionPanSouth:
		return v.PanLatitude(-step)
	case ActionZoomIn:
		return v.ZoomIn()
	case ActionZoomOut:
		return v.ZoomOut()
	case ActionReset:
		return v.ResetToDefault()
	case ActionToggleStyle:
		return v.ToggleStyle()
	default:
		return v
	}
}
