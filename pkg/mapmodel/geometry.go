package mapmodel

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// LaneThickness is the width of every lane in map units (meters).
const LaneThickness = 2.5

// Angle is a direction in radians. Map space has y growing downwards, so
// positive angles turn clockwise on screen.
type Angle float64

// AngleBetween returns the direction from a to b.
func AngleBetween(a, b orb.Point) Angle {
	return Angle(math.Atan2(b[1]-a[1], b[0]-a[0]))
}

// Degrees converts the angle without wrapping.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / math.Pi
}

// NormalizedDegrees wraps the angle into [0, 360).
func (a Angle) NormalizedDegrees() float64 {
	d := math.Mod(a.Degrees(), 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Opposite points the other way.
func (a Angle) Opposite() Angle {
	return a + math.Pi
}

// Project moves pt by dist in the direction of angle.
func Project(pt orb.Point, angle Angle, dist float64) orb.Point {
	return orb.Point{
		pt[0] + dist*math.Cos(float64(angle)),
		pt[1] + dist*math.Sin(float64(angle)),
	}
}

// Length of a polyline.
func Length(ls orb.LineString) float64 {
	return planar.Length(ls)
}

// DistAlong returns the point dist along the polyline and the heading of the
// segment it lands on. dist is clamped to the polyline's extent.
func DistAlong(ls orb.LineString, dist float64) (orb.Point, Angle) {
	if len(ls) == 0 {
		return orb.Point{}, 0
	}
	if len(ls) == 1 {
		return ls[0], 0
	}
	if dist <= 0 {
		return ls[0], AngleBetween(ls[0], ls[1])
	}
	remaining := dist
	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		seg := planar.Distance(a, b)
		if remaining <= seg && seg > 0 {
			t := remaining / seg
			return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}, AngleBetween(a, b)
		}
		remaining -= seg
	}
	last := len(ls) - 1
	return ls[last], AngleBetween(ls[last-1], ls[last])
}

// FirstAngle is the heading of the first segment.
func FirstAngle(ls orb.LineString) Angle {
	if len(ls) < 2 {
		return 0
	}
	return AngleBetween(ls[0], ls[1])
}

// LastAngle is the heading of the final segment.
func LastAngle(ls orb.LineString) Angle {
	if len(ls) < 2 {
		return 0
	}
	return AngleBetween(ls[len(ls)-2], ls[len(ls)-1])
}

// Reversed returns a copy of ls walking the other way.
func Reversed(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, pt := range ls {
		out[len(ls)-1-i] = pt
	}
	return out
}

// ShiftRight offsets every vertex to the right of the direction of travel.
// Interior vertices use the averaged normal of their two segments.
func ShiftRight(ls orb.LineString, width float64) orb.LineString {
	out := make(orb.LineString, len(ls))
	if len(ls) < 2 {
		copy(out, ls)
		return out
	}
	for i := range ls {
		var nx, ny float64
		if i > 0 {
			x, y := rightNormal(ls[i-1], ls[i])
			nx, ny = nx+x, ny+y
		}
		if i < len(ls)-1 {
			x, y := rightNormal(ls[i], ls[i+1])
			nx, ny = nx+x, ny+y
		}
		l := math.Hypot(nx, ny)
		if l == 0 {
			out[i] = ls[i]
			continue
		}
		out[i] = orb.Point{ls[i][0] + nx/l*width, ls[i][1] + ny/l*width}
	}
	return out
}

// ShiftLeft offsets to the left of the direction of travel.
func ShiftLeft(ls orb.LineString, width float64) orb.LineString {
	return ShiftRight(ls, -width)
}

func rightNormal(a, b orb.Point) (float64, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		return 0, 0
	}
	return -dy / l, dx / l
}

// ThickRing turns a polyline into a closed polygon ring of the given width.
func ThickRing(ls orb.LineString, width float64) orb.Ring {
	left := ShiftLeft(ls, width/2)
	right := ShiftRight(ls, width/2)
	ring := make(orb.Ring, 0, len(left)+len(right)+1)
	ring = append(ring, left...)
	for i := len(right) - 1; i >= 0; i-- {
		ring = append(ring, right[i])
	}
	if len(left) > 0 {
		ring = append(ring, left[0])
	}
	return ring
}

// RectRing builds an axis-aligned closed ring.
func RectRing(minX, minY, maxX, maxY float64) orb.Ring {
	return orb.Ring{
		{minX, minY},
		{maxX, minY},
		{maxX, maxY},
		{minX, maxY},
		{minX, minY},
	}
}
