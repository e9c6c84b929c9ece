// Package render turns map objects and agents into things that can be drawn
// with ebiten. Everything is built once in map space; DrawOptions.GeoM maps
// it onto the screen.
package render

import (
	"image/color"

	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/paulmach/orb"
)

// DrawOptions carries the camera and per-draw overrides.
type DrawOptions struct {
	// GeoM converts map space to screen space.
	GeoM ebiten.GeoM
	// Zoom is the scale part of GeoM, used to skip detail when zoomed out.
	Zoom float64
	// Override replaces the object's normal color when set.
	Override color.Color
}

// NewDrawOptions creates options for a camera at the given zoom. The caller
// sets up GeoM.
func NewDrawOptions(zoom float64) *DrawOptions {
	return &DrawOptions{Zoom: zoom}
}

// Renderable is anything the map can draw: a static map object or a moving agent.
type Renderable interface {
	ID() objects.ID
	// Bounds in map space.
	Bounds() orb.Bound
	// ZOrder decides draw order; lower values are drawn first.
	ZOrder() int
	// Contains reports whether a map-space point hits the object.
	Contains(pt orb.Point) bool
	Draw(dst *ebiten.Image, opts *DrawOptions)
}

// pick returns the override color if there is one.
func (o *DrawOptions) pick(normal color.Color) color.Color {
	if o != nil && o.Override != nil {
		return o.Override
	}
	return normal
}

// MinZoomForDetail is the zoom above which markings and labels are drawn.
const MinZoomForDetail = 2.0
