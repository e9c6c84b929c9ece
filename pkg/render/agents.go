package render

import (
	"image/color"
	"math"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/golangdaddy/citymap/pkg/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// BikeMaxLength is the longest vehicle drawn as a bike.
const BikeMaxLength = 2.5

// PedestrianRadius is the size of a pedestrian dot.
const PedestrianRadius = 0.6

// zorderOn is the layer of whatever the agent is on.
func zorderOn(on mapmodel.Traversable, m *mapmodel.Map) int {
	if t, ok := on.AsTurn(); ok {
		return m.GetI(t.Parent).Layer
	}
	l, _ := on.AsLane()
	return m.GetR(m.GetL(l).Parent).Layer
}

// NewDrawVehicle picks the drawable for a vehicle from its length.
func NewDrawVehicle(input sim.DrawCarInput, m *mapmodel.Map, cs *ColorScheme) Renderable {
	if input.Length <= BikeMaxLength {
		return NewDrawBike(input, m, cs)
	}
	return NewDrawCar(input, m, cs)
}

// DrawCar is a top-down car: body, outline, windshield and wheels.
type DrawCar struct {
	id         sim.CarID
	zorder     int
	body       orb.Ring
	windshield orb.Ring
	wheels     []orb.Ring
	bound      orb.Bound
	fill       color.RGBA
	outline    color.RGBA
	glass      color.RGBA
}

// box returns the corners of a rectangle that starts at front and extends
// length back along angle, width wide and offset sideways by shift.
func box(front orb.Point, angle mapmodel.Angle, length, width, shift float64) orb.Ring {
	back := mapmodel.Project(front, angle.Opposite(), length)
	right := angle + math.Pi/2
	left := right.Opposite()
	fr := mapmodel.Project(mapmodel.Project(front, right, width/2), right, shift)
	fl := mapmodel.Project(mapmodel.Project(front, left, width/2), right, shift)
	br := mapmodel.Project(mapmodel.Project(back, right, width/2), right, shift)
	bl := mapmodel.Project(mapmodel.Project(back, left, width/2), right, shift)
	return orb.Ring{fl, fr, br, bl, fl}
}

// NewDrawCar builds the drawable for a car from its current state.
func NewDrawCar(input sim.DrawCarInput, m *mapmodel.Map, cs *ColorScheme) *DrawCar {
	d := &DrawCar{
		id:      input.ID,
		zorder:  zorderOn(input.On, m),
		body:    box(input.Front, input.Angle, input.Length, input.Width, 0),
		fill:    cs.Get(ColorCar),
		outline: cs.Get(ColorCarOutline),
		glass:   cs.Get(ColorWindshield),
	}
	if input.Waiting {
		d.fill = cs.Get(ColorCarWaiting)
	}
	d.bound = d.body.Bound()

	// Windshield sits a little back from the bonnet.
	windshieldFront := mapmodel.Project(input.Front, input.Angle.Opposite(), input.Length*0.25)
	d.windshield = box(windshieldFront, input.Angle, input.Length*0.2, input.Width*0.6, 0)

	// Wheels sit under the body at each corner.
	wheelLength := input.Length * 0.18
	wheelWidth := input.Width * 0.2
	for _, along := range []float64{input.Length * 0.1, input.Length * 0.72} {
		axle := mapmodel.Project(input.Front, input.Angle.Opposite(), along)
		for _, side := range []float64{-1, 1} {
			d.wheels = append(d.wheels, box(axle, input.Angle, wheelLength, wheelWidth, side*(input.Width/2-wheelWidth/2)))
		}
	}
	return d
}

func (d *DrawCar) ID() objects.ID    { return objects.Car(d.id) }
func (d *DrawCar) ZOrder() int       { return d.zorder }
func (d *DrawCar) Bounds() orb.Bound { return d.bound }

func (d *DrawCar) Contains(pt orb.Point) bool {
	return planar.RingContains(d.body, pt)
}

func (d *DrawCar) Draw(dst *ebiten.Image, opts *DrawOptions) {
	if opts.Zoom >= MinZoomForDetail {
		for _, w := range d.wheels {
			fillPolygon(dst, w, opts.GeoM, d.outline)
		}
	}
	fillPolygon(dst, d.body, opts.GeoM, opts.pick(d.fill))
	if opts.Zoom < MinZoomForDetail {
		return
	}
	strokePolyline(dst, d.body, opts, 0.1, d.outline)
	fillPolygon(dst, d.windshield, opts.GeoM, d.glass)
}

// DrawBike is a bike and rider.
type DrawBike struct {
	id     sim.CarID
	zorder int
	frame  orb.LineString
	rider  orb.Point
	bound  orb.Bound
	fill   color.RGBA
}

// NewDrawBike builds the drawable for a bike from its current state.
func NewDrawBike(input sim.DrawCarInput, m *mapmodel.Map, cs *ColorScheme) *DrawBike {
	back := mapmodel.Project(input.Front, input.Angle.Opposite(), input.Length)
	d := &DrawBike{
		id:     input.ID,
		zorder: zorderOn(input.On, m),
		frame:  orb.LineString{input.Front, back},
		rider:  mapmodel.Project(input.Front, input.Angle.Opposite(), input.Length/2),
		fill:   cs.Get(ColorBike),
	}
	if input.Waiting {
		d.fill = cs.Get(ColorCarWaiting)
	}
	d.bound = d.frame.Bound().Pad(input.Width / 2)
	return d
}

func (d *DrawBike) ID() objects.ID    { return objects.Car(d.id) }
func (d *DrawBike) ZOrder() int       { return d.zorder }
func (d *DrawBike) Bounds() orb.Bound { return d.bound }

func (d *DrawBike) Contains(pt orb.Point) bool {
	return d.bound.Contains(pt)
}

func (d *DrawBike) Draw(dst *ebiten.Image, opts *DrawOptions) {
	clr := opts.pick(d.fill)
	strokePolyline(dst, d.frame, opts, 0.2, clr)
	fillCircle(dst, d.rider, 0.35, opts, clr)
}

// DrawPedestrian is a dot on a sidewalk or crossing.
type DrawPedestrian struct {
	id     sim.PedestrianID
	zorder int
	pos    orb.Point
	fill   color.RGBA
}

// NewDrawPedestrian builds the drawable for a pedestrian from its current state.
func NewDrawPedestrian(input sim.DrawPedestrianInput, m *mapmodel.Map, cs *ColorScheme) *DrawPedestrian {
	d := &DrawPedestrian{
		id:     input.ID,
		zorder: zorderOn(input.On, m),
		pos:    input.Pos,
		fill:   cs.Get(ColorPedestrian),
	}
	if input.Waiting {
		d.fill = cs.Get(ColorPedestrianWaiting)
	}
	return d
}

func (d *DrawPedestrian) ID() objects.ID { return objects.Pedestrian(d.id) }
func (d *DrawPedestrian) ZOrder() int    { return d.zorder }

func (d *DrawPedestrian) Bounds() orb.Bound {
	return orb.Bound{Min: d.pos, Max: d.pos}.Pad(PedestrianRadius)
}

func (d *DrawPedestrian) Contains(pt orb.Point) bool {
	return planar.Distance(d.pos, pt) <= PedestrianRadius
}

func (d *DrawPedestrian) Draw(dst *ebiten.Image, opts *DrawOptions) {
	fillCircle(dst, d.pos, PedestrianRadius, opts, opts.pick(d.fill))
}
