package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/paulmach/orb"
)

// Zoom limits, in screen pixels per meter.
const (
	MinZoom = 0.2
	MaxZoom = 40.0
)

// Camera looks at Center, in map space, at Zoom pixels per meter.
type Camera struct {
	Center orb.Point
	Zoom   float64
}

// FitCamera frames all of bounds on a w by h screen.
func FitCamera(bounds orb.Bound, w, h int) Camera {
	zoom := MaxZoom
	if dx := bounds.Max[0] - bounds.Min[0]; dx > 0 {
		zoom = min(zoom, float64(w)/dx)
	}
	if dy := bounds.Max[1] - bounds.Min[1]; dy > 0 {
		zoom = min(zoom, float64(h)/dy)
	}
	return Camera{Center: bounds.Center(), Zoom: max(zoom, MinZoom)}
}

// GeoM converts map space into screen space.
func (c Camera) GeoM(w, h int) ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-c.Center[0], -c.Center[1])
	g.Scale(c.Zoom, c.Zoom)
	g.Translate(float64(w)/2, float64(h)/2)
	return g
}

// ScreenToMap converts a screen position into map space.
func (c Camera) ScreenToMap(x, y float64, w, h int) orb.Point {
	return orb.Point{
		c.Center[0] + (x-float64(w)/2)/c.Zoom,
		c.Center[1] + (y-float64(h)/2)/c.Zoom,
	}
}

// ViewBounds is the part of the map on screen.
func (c Camera) ViewBounds(w, h int) orb.Bound {
	return orb.Bound{
		Min: c.ScreenToMap(0, 0, w, h),
		Max: c.ScreenToMap(float64(w), float64(h), w, h),
	}
}

// Pan moves the view by a distance in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.Center[0] += dx / c.Zoom
	c.Center[1] += dy / c.Zoom
}

// ZoomAt scales the zoom by factor while keeping the map point under the
// screen position (x, y) in place.
func (c *Camera) ZoomAt(factor, x, y float64, w, h int) {
	before := c.ScreenToMap(x, y, w, h)
	c.Zoom = min(max(c.Zoom*factor, MinZoom), MaxZoom)
	after := c.ScreenToMap(x, y, w, h)
	c.Center[0] += before[0] - after[0]
	c.Center[1] += before[1] - after[1]
}
