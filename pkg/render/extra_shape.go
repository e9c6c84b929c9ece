package render

import (
	"image/color"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/golangdaddy/citymap/pkg/shapes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	extraShapeRadius    = mapmodel.LaneThickness
	extraShapeThickness = 0.5
	// ExtraShapeRoadSearch is how far a shape may be from the road it is attributed to.
	ExtraShapeRoadSearch = 5 * mapmodel.LaneThickness
)

// DrawExtraShape is a loaded geo shape: a dot for a single point, a line otherwise.
type DrawExtraShape struct {
	id         objects.ExtraShapeID
	pts        orb.LineString
	bound      orb.Bound
	road       mapmodel.RoadSide
	hasRoad    bool
	attributes map[string]string
	fill       color.RGBA
}

// NewExtraShape converts a shape into map space and attributes it to the
// nearest side of a road. Shapes with any point outside the map are dropped.
func NewExtraShape(id objects.ExtraShapeID, s shapes.ExtraShape, gps mapmodel.GPSBounds, closest *mapmodel.FindClosest[mapmodel.RoadSide], cs *ColorScheme) (*DrawExtraShape, bool) {
	if len(s.Points) == 0 {
		return nil, false
	}
	pts := make(orb.LineString, 0, len(s.Points))
	for _, gpsPt := range s.Points {
		pt, ok := gps.ToMap(gpsPt)
		if !ok {
			return nil, false
		}
		pts = append(pts, pt)
	}
	d := &DrawExtraShape{
		id:         id,
		pts:        pts,
		attributes: s.Attributes,
		fill:       cs.Get(ColorExtraShape),
	}
	pad := extraShapeThickness / 2
	if len(pts) == 1 {
		pad = extraShapeRadius
	}
	d.bound = pts.Bound().Pad(pad)
	if closest != nil {
		d.road, _, d.hasRoad = closest.Closest(pts[0], ExtraShapeRoadSearch)
	}
	return d, true
}

func (d *DrawExtraShape) ID() objects.ID    { return objects.ExtraShape(d.id) }
func (d *DrawExtraShape) ZOrder() int       { return 0 }
func (d *DrawExtraShape) Bounds() orb.Bound { return d.bound }

func (d *DrawExtraShape) Contains(pt orb.Point) bool {
	if len(d.pts) == 1 {
		return planar.Distance(d.pts[0], pt) <= extraShapeRadius
	}
	return planar.DistanceFrom(d.pts, pt) <= extraShapeThickness/2
}

// Road is the side of the road nearest to the shape, if one was close enough.
func (d *DrawExtraShape) Road() (mapmodel.RoadSide, bool) { return d.road, d.hasRoad }

// Attributes read from the source.
func (d *DrawExtraShape) Attributes() map[string]string { return d.attributes }

func (d *DrawExtraShape) Draw(dst *ebiten.Image, opts *DrawOptions) {
	clr := opts.pick(d.fill)
	if len(d.pts) == 1 {
		fillCircle(dst, d.pts[0], extraShapeRadius, opts, clr)
		return
	}
	strokePolyline(dst, d.pts, opts, extraShapeThickness, clr)
}
