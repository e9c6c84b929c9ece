package render

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// shape is a filled outline with a cached bounding box.
type shape struct {
	ring  orb.Ring
	bound orb.Bound
	mesh  *Mesh
}

func newShape(ring orb.Ring, p *Prerender) shape {
	return shape{ring: ring, bound: ring.Bound(), mesh: p.Fill(ring)}
}

// Bounds of the outline in map space.
func (s *shape) Bounds() orb.Bound { return s.bound }

// Contains tests the outline.
func (s *shape) Contains(pt orb.Point) bool {
	return s.bound.Contains(pt) && planar.RingContains(s.ring, pt)
}

// DrawLane is a lane strip with its markings.
type DrawLane struct {
	shape
	id      mapmodel.LaneID
	zorder  int
	center  orb.LineString
	kind    mapmodel.LaneType
	fill    color.RGBA
	marking color.RGBA
}

// NewDrawLane builds the drawable for one lane.
func NewDrawLane(l *mapmodel.Lane, m *mapmodel.Map, cs *ColorScheme, p *Prerender) *DrawLane {
	return &DrawLane{
		shape:   newShape(mapmodel.ThickRing(l.Center, mapmodel.LaneThickness), p),
		id:      l.ID,
		zorder:  m.GetR(l.Parent).Layer,
		center:  l.Center,
		kind:    l.Type,
		fill:    laneColor(l.Type, cs),
		marking: cs.Get(ColorLaneMarking),
	}
}

func laneColor(t mapmodel.LaneType, cs *ColorScheme) color.RGBA {
	switch t {
	case mapmodel.LaneParking:
		return cs.Get(ColorParkingLane)
	case mapmodel.LaneSidewalk:
		return cs.Get(ColorSidewalk)
	case mapmodel.LaneBiking:
		return cs.Get(ColorBikeLane)
	case mapmodel.LaneBus:
		return cs.Get(ColorBusLane)
	}
	return cs.Get(ColorDrivingLane)
}

func (d *DrawLane) ID() objects.ID { return objects.Lane(d.id) }
func (d *DrawLane) ZOrder() int    { return d.zorder }

// Type is the lane type the drawable was built for.
func (d *DrawLane) Type() mapmodel.LaneType { return d.kind }

func (d *DrawLane) Draw(dst *ebiten.Image, opts *DrawOptions) {
	d.mesh.Draw(dst, opts.GeoM, opts.pick(d.fill))
	if opts.Zoom < MinZoomForDetail || opts.Override != nil {
		return
	}
	switch d.kind {
	case mapmodel.LaneDriving, mapmodel.LaneBus:
		// Dashes on the left edge separate the two directions.
		dashedLine(dst, mapmodel.ShiftLeft(d.center, mapmodel.LaneThickness/2), opts, 0.15, 1.5, d.marking)
	case mapmodel.LaneBiking:
		strokePolyline(dst, d.center, opts, 0.1, d.marking)
	}
}

// DrawIntersection is the junction polygon.
type DrawIntersection struct {
	shape
	id     mapmodel.IntersectionID
	zorder int
	fill   color.RGBA
	border color.RGBA
}

// NewDrawIntersection builds the drawable for one intersection.
func NewDrawIntersection(i *mapmodel.Intersection, cs *ColorScheme, p *Prerender) *DrawIntersection {
	return &DrawIntersection{
		shape:  newShape(i.Polygon, p),
		id:     i.ID,
		zorder: i.Layer,
		fill:   cs.Get(ColorIntersection),
		border: cs.Get(ColorBorder),
	}
}

func (d *DrawIntersection) ID() objects.ID { return objects.Intersection(d.id) }
func (d *DrawIntersection) ZOrder() int    { return d.zorder }

func (d *DrawIntersection) Draw(dst *ebiten.Image, opts *DrawOptions) {
	d.mesh.Draw(dst, opts.GeoM, opts.pick(d.fill))
	if opts.Zoom >= MinZoomForDetail {
		strokePolyline(dst, d.ring, opts, 0.1, d.border)
	}
}

// DrawBuilding is a footprint plus the path to its front door.
type DrawBuilding struct {
	shape
	id      mapmodel.BuildingID
	zorder  int
	front   orb.LineString
	address string
	fill    color.RGBA
	path    color.RGBA
}

// NewDrawBuilding builds the drawable for one building.
func NewDrawBuilding(b *mapmodel.Building, cs *ColorScheme, p *Prerender) *DrawBuilding {
	d := &DrawBuilding{
		shape:   newShape(b.Points, p),
		id:      b.ID,
		zorder:  b.Layer,
		front:   b.FrontPath,
		address: b.Address,
		fill:    cs.Get(ColorBuilding),
		path:    cs.Get(ColorBuildingPath),
	}
	if len(b.FrontPath) > 0 {
		d.bound = d.bound.Union(b.FrontPath.Bound())
	}
	return d
}

func (d *DrawBuilding) ID() objects.ID { return objects.Building(d.id) }
func (d *DrawBuilding) ZOrder() int    { return d.zorder }

// Address of the building.
func (d *DrawBuilding) Address() string { return d.address }

func (d *DrawBuilding) Draw(dst *ebiten.Image, opts *DrawOptions) {
	d.mesh.Draw(dst, opts.GeoM, opts.pick(d.fill))
	if len(d.front) > 1 {
		strokePolyline(dst, d.front, opts, 0.5, d.path)
	}
}

// DrawParcel is a piece of land, shaded by block.
type DrawParcel struct {
	shape
	id     mapmodel.ParcelID
	zorder int
	fill   color.RGBA
}

// NewDrawParcel builds the drawable for one parcel.
func NewDrawParcel(pc *mapmodel.Parcel, cs *ColorScheme, p *Prerender) *DrawParcel {
	return &DrawParcel{
		shape:  newShape(pc.Points, p),
		id:     pc.ID,
		zorder: pc.Layer,
		fill:   shade(cs.Get(ColorParcel), pc.Block),
	}
}

// shade darkens a color a little per block so neighbouring blocks differ.
func shade(c color.RGBA, block int) color.RGBA {
	f := 1 - 0.05*float64(block%4)
	return color.RGBA{R: uint8(float64(c.R) * f), G: uint8(float64(c.G) * f), B: uint8(float64(c.B) * f), A: c.A}
}

func (d *DrawParcel) ID() objects.ID { return objects.Parcel(d.id) }
func (d *DrawParcel) ZOrder() int    { return d.zorder }

func (d *DrawParcel) Draw(dst *ebiten.Image, opts *DrawOptions) {
	d.mesh.Draw(dst, opts.GeoM, opts.pick(d.fill))
}

// DrawArea is a park, lake or swamp.
type DrawArea struct {
	shape
	id     mapmodel.AreaID
	zorder int
	fill   color.RGBA
}

// NewDrawArea builds the drawable for one area.
func NewDrawArea(a *mapmodel.Area, cs *ColorScheme, p *Prerender) *DrawArea {
	var fill color.RGBA
	switch a.Type {
	case mapmodel.AreaWater:
		fill = cs.Get(ColorWater)
	case mapmodel.AreaSwamp:
		fill = cs.Get(ColorSwamp)
	default:
		fill = cs.Get(ColorPark)
	}
	return &DrawArea{shape: newShape(a.Points, p), id: a.ID, zorder: a.Layer, fill: fill}
}

func (d *DrawArea) ID() objects.ID { return objects.Area(d.id) }
func (d *DrawArea) ZOrder() int    { return d.zorder }

func (d *DrawArea) Draw(dst *ebiten.Image, opts *DrawOptions) {
	d.mesh.Draw(dst, opts.GeoM, opts.pick(d.fill))
}

// BusStopLength is how much sidewalk a stop marking covers.
const BusStopLength = 4.0

var (
	labelOnce sync.Once
	labelFace text.Face
)

func face() text.Face {
	labelOnce.Do(func() {
		labelFace = text.NewGoXFace(bitmapfont.Face)
	})
	return labelFace
}

// DrawBusStop marks a stop on the sidewalk.
type DrawBusStop struct {
	shape
	id     mapmodel.BusStopID
	zorder int
	label  string
	at     orb.Point
	fill   color.RGBA
	text   color.RGBA
}

// NewDrawBusStop builds the drawable for one bus stop.
func NewDrawBusStop(s *mapmodel.BusStop, m *mapmodel.Map, cs *ColorScheme, p *Prerender) *DrawBusStop {
	sidewalk := m.GetL(s.ID.Sidewalk)
	from, _ := mapmodel.DistAlong(sidewalk.Center, s.DistAlong-BusStopLength/2)
	to, _ := mapmodel.DistAlong(sidewalk.Center, s.DistAlong+BusStopLength/2)
	ring := mapmodel.ThickRing(orb.LineString{from, to}, 0.8*mapmodel.LaneThickness)
	return &DrawBusStop{
		shape:  newShape(ring, p),
		id:     s.ID,
		zorder: m.GetR(sidewalk.Parent).Layer,
		label:  fmt.Sprintf("BUS %d", s.ID.Idx+1),
		at:     s.SidewalkPos,
		fill:   cs.Get(ColorBusStop),
		text:   cs.Get(ColorBusStopLabel),
	}
}

func (d *DrawBusStop) ID() objects.ID { return objects.BusStop(d.id) }
func (d *DrawBusStop) ZOrder() int    { return d.zorder }

func (d *DrawBusStop) Draw(dst *ebiten.Image, opts *DrawOptions) {
	d.mesh.Draw(dst, opts.GeoM, opts.pick(d.fill))
	if opts.Zoom < MinZoomForDetail {
		return
	}
	f := face()
	x, y := opts.GeoM.Apply(d.at[0], d.at[1])
	op := &text.DrawOptions{}
	op.GeoM.Translate(x-text.Advance(d.label, f)/2, y-8)
	op.ColorScale.ScaleWithColor(d.text)
	text.Draw(dst, d.label, f, op)
}
