// Package viewstate holds the zoom level of a viewport.
package viewstate

import (
	"fmt"
	"math"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	ZoomStep    = 0.2
	DefaultZoom = 1.0
)

// ViewState is the zoom of one viewport. The zero value is not usable; call New.
type ViewState struct {
	zoom float64
}

func New() *ViewState {
	return &ViewState{zoom: DefaultZoom}
}

// ZoomIn grows the zoom by one step, saturating at MaxZoom.
func (v *ViewState) ZoomIn() float64 {
	v.zoom = clamp(v.zoom + ZoomStep)
	return v.zoom
}

// ZoomOut shrinks the zoom by one step, saturating at MinZoom.
func (v *ViewState) ZoomOut() float64 {
	v.zoom = clamp(v.zoom - ZoomStep)
	return v.zoom
}

// SetZoom clamps level into range. Non-finite or non-positive levels are rejected.
func (v *ViewState) SetZoom(level float64) (float64, error) {
	if math.IsNaN(level) || math.IsInf(level, 0) || level <= 0 {
		return v.zoom, fmt.Errorf("%w: %v", domain.ErrInvalidZoom, level)
	}
	v.zoom = clamp(level)
	return v.zoom, nil
}

// Reset restores the default zoom.
func (v *ViewState) Reset() float64 {
	v.zoom = DefaultZoom
	return v.zoom
}

func (v *ViewState) Zoom() float64 { return v.zoom }

// InverseScale is 1/zoom, applied to markers so they keep their size.
func (v *ViewState) InverseScale() float64 { return 1 / v.zoom }

// PanEnabled reports whether the viewport is zoomed in far enough to scroll.
func (v *ViewState) PanEnabled() bool { return v.zoom > DefaultZoom }

func (v *ViewState) Transform() domain.ViewTransform {
	return domain.ViewTransform{ZoomLevel: v.zoom}
}

func clamp(z float64) float64 {
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}
