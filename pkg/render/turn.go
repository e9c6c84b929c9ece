package render

import (
	"image/color"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	// TurnIconSpacing separates consecutive icons along a lane.
	TurnIconSpacing = 1.5
	// TurnIconRadius is the radius of the icon background.
	TurnIconRadius  = 0.6
	turnArrowLength = 0.9
)

// DrawTurn is the icon for one movement, drawn on the lane it leaves from.
// Turns leaving the same lane end are spaced out by their offset.
type DrawTurn struct {
	id     mapmodel.TurnID
	zorder int
	center orb.Point
	angle  mapmodel.Angle
	geom   orb.LineString
	fill   color.RGBA
	arrow  color.RGBA
}

// NewDrawTurn places the icon offset slots back from the end of the source
// lane that touches the turn's intersection.
func NewDrawTurn(t *mapmodel.Turn, m *mapmodel.Map, offset int, cs *ColorScheme) *DrawTurn {
	return &DrawTurn{
		id:     t.ID,
		zorder: m.GetI(t.ID.Parent).Layer,
		center: TurnIconCenter(t, m, offset),
		angle:  t.Angle(),
		geom:   t.Geom,
		fill:   cs.Get(ColorTurnIcon),
		arrow:  cs.Get(ColorBorder),
	}
}

// TurnIconCenter is where the icon for a turn with the given offset sits.
func TurnIconCenter(t *mapmodel.Turn, m *mapmodel.Map, offset int) orb.Point {
	lane := m.GetL(t.ID.Src)
	back := TurnIconSpacing * (float64(offset) + 1)
	if t.ID.Parent == lane.DstI {
		pt, _ := mapmodel.DistAlong(lane.Center, lane.Length()-back)
		return pt
	}
	pt, _ := mapmodel.DistAlong(lane.Center, back)
	return pt
}

func (d *DrawTurn) ID() objects.ID { return objects.Turn(d.id) }
func (d *DrawTurn) ZOrder() int    { return d.zorder }

// Center of the icon.
func (d *DrawTurn) Center() orb.Point { return d.center }

func (d *DrawTurn) Bounds() orb.Bound {
	return orb.Bound{Min: d.center, Max: d.center}.Pad(TurnIconRadius)
}

func (d *DrawTurn) Contains(pt orb.Point) bool {
	return planar.Distance(d.center, pt) <= TurnIconRadius
}

func (d *DrawTurn) Draw(dst *ebiten.Image, opts *DrawOptions) {
	fillCircle(dst, d.center, TurnIconRadius, opts, opts.pick(d.fill))
	tail := mapmodel.Project(d.center, d.angle.Opposite(), turnArrowLength/2)
	head := mapmodel.Project(d.center, d.angle, turnArrowLength/2)
	strokePolyline(dst, []orb.Point{tail, head}, opts, 0.12, d.arrow)
	for _, side := range []mapmodel.Angle{d.angle.Opposite() + 0.6, d.angle.Opposite() - 0.6} {
		strokePolyline(dst, []orb.Point{head, mapmodel.Project(head, side, 0.3)}, opts, 0.12, d.arrow)
	}
	if opts.Override != nil && len(d.geom) > 1 {
		// Highlighted icons also show the path through the intersection.
		strokePolyline(dst, d.geom, opts, 0.3, opts.Override)
	}
}
