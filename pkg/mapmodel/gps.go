package mapmodel

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// GPSBounds is the lon/lat box the map was cut from. Map space puts the
// north-west corner at the origin, x growing east and y growing south, in meters.
type GPSBounds struct {
	orb.Bound
}

// NewGPSBounds spans the two corners.
func NewGPSBounds(minLon, minLat, maxLon, maxLat float64) GPSBounds {
	return GPSBounds{orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}}
}

// ToMap converts a lon/lat point into map space. The second result is false
// when the point falls outside the bounds.
func (g GPSBounds) ToMap(pt orb.Point) (orb.Point, bool) {
	if !g.Contains(pt) {
		return orb.Point{}, false
	}
	x := geo.Distance(orb.Point{g.Min[0], pt[1]}, pt)
	y := geo.Distance(orb.Point{pt[0], g.Max[1]}, pt)
	return orb.Point{x, y}, true
}

// FromMap is the inverse of ToMap, good to within the equirectangular error of
// a city-sized box.
func (g GPSBounds) FromMap(pt orb.Point) orb.Point {
	width := geo.Distance(orb.Point{g.Min[0], g.Center()[1]}, orb.Point{g.Max[0], g.Center()[1]})
	height := geo.Distance(orb.Point{g.Min[0], g.Min[1]}, orb.Point{g.Min[0], g.Max[1]})
	lon := g.Min[0]
	if width > 0 {
		lon += pt[0] / width * (g.Max[0] - g.Min[0])
	}
	lat := g.Max[1]
	if height > 0 {
		lat -= pt[1] / height * (g.Max[1] - g.Min[1])
	}
	return orb.Point{lon, lat}
}
