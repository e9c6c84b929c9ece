// Package traffic is a small deterministic traffic simulation: cars follow
// driving lanes and turns, pedestrians walk the sidewalks and crossings.
package traffic

import (
	"math/rand"
	"sort"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/sim"
	"github.com/paulmach/orb"
)

const (
	// CarLength is the length of a regular car in meters.
	CarLength = 4.5
	// BikeLength is the length of a bike in meters.
	BikeLength = 1.8
	// MinGap is the space a vehicle keeps to the one in front.
	MinGap = 1.0
	// maxEmptyHops bounds how many zero-length lanes or turns an agent moves
	// through in one tick before it stops at the start of the last one.
	maxEmptyHops = 16
)

// Config sizes the simulation.
type Config struct {
	Cars        int
	Pedestrians int
	// BikeEvery makes every Nth vehicle a bike; 0 means no bikes.
	BikeEvery int
	Seed      int64
	// Speeds in meters per tick.
	CarSpeed        float64
	BikeSpeed       float64
	PedestrianSpeed float64
}

// DefaultConfig is sized for the default grid city at 60 ticks per second.
func DefaultConfig() Config {
	return Config{
		Cars:            120,
		Pedestrians:     200,
		BikeEvery:       8,
		Seed:            1,
		CarSpeed:        0.2,
		BikeSpeed:       0.08,
		PedestrianSpeed: 0.025,
	}
}

// Car is a vehicle on a lane or turn. Dist is measured from the start of
// whatever it is on to its front.
type Car struct {
	ID      sim.CarID
	On      mapmodel.Traversable
	Dist    float64
	Speed   float64
	Length  float64
	Width   float64
	Waiting bool
}

// Pedestrian walks a sidewalk in either direction, or a crossing.
type Pedestrian struct {
	ID    sim.PedestrianID
	On    mapmodel.Traversable
	Dist  float64
	Speed float64
	// Forwards is false when walking a sidewalk against its drawn direction.
	Forwards bool
	Waiting  bool
}

var _ sim.GetDrawAgents = (*Simulation)(nil)

// Simulation owns every agent. It is not safe for concurrent use.
type Simulation struct {
	m    *mapmodel.Map
	tick sim.Tick
	rng  *rand.Rand

	cars []*Car
	peds []*Pedestrian

	carsOn map[mapmodel.Traversable][]*Car
	pedsOn map[mapmodel.Traversable][]*Pedestrian
}

// New spawns agents on random lanes of m.
func New(m *mapmodel.Map, cfg Config) *Simulation {
	s := &Simulation{
		m:   m,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}

	var driving, sidewalks []*mapmodel.Lane
	for _, l := range m.AllLanes() {
		switch l.Type {
		case mapmodel.LaneDriving, mapmodel.LaneBiking, mapmodel.LaneBus:
			driving = append(driving, l)
		case mapmodel.LaneSidewalk:
			sidewalks = append(sidewalks, l)
		}
	}

	if len(driving) > 0 {
		for i := 0; i < cfg.Cars; i++ {
			l := driving[s.rng.Intn(len(driving))]
			c := &Car{
				ID:     sim.CarID(i),
				On:     mapmodel.OnLane(l.ID),
				Speed:  cfg.CarSpeed,
				Length: CarLength,
				Width:  mapmodel.LaneThickness * 0.7,
			}
			if cfg.BikeEvery > 0 && i%cfg.BikeEvery == cfg.BikeEvery-1 {
				c.Speed = cfg.BikeSpeed
				c.Length = BikeLength
				c.Width = mapmodel.LaneThickness * 0.3
			}
			c.Dist = c.Length + s.rng.Float64()*max(l.Length()-c.Length, 0)
			s.cars = append(s.cars, c)
		}
	}
	if len(sidewalks) > 0 {
		for i := 0; i < cfg.Pedestrians; i++ {
			l := sidewalks[s.rng.Intn(len(sidewalks))]
			s.peds = append(s.peds, &Pedestrian{
				ID:       sim.PedestrianID(i),
				On:       mapmodel.OnLane(l.ID),
				Dist:     s.rng.Float64() * l.Length(),
				Speed:    cfg.PedestrianSpeed * (0.8 + 0.4*s.rng.Float64()),
				Forwards: s.rng.Intn(2) == 0,
			})
		}
	}
	s.reindex()
	s.spaceOut()
	return s
}

// Tick is the current simulation time.
func (s *Simulation) Tick() sim.Tick { return s.tick }

// Cars returns every car.
func (s *Simulation) Cars() []*Car { return s.cars }

// Pedestrians returns every pedestrian.
func (s *Simulation) Pedestrians() []*Pedestrian { return s.peds }

// Step advances time by one tick.
func (s *Simulation) Step() {
	s.tick = s.tick.Next()

	for _, group := range s.carGroups() {
		for i, c := range group {
			target := c.Dist + c.Speed
			c.Waiting = false
			if i > 0 {
				leader := group[i-1]
				if limit := leader.Dist - leader.Length - MinGap; target > limit {
					target = max(c.Dist, limit)
					c.Waiting = true
				}
			}
			c.Dist = target
		}
	}
	for _, c := range s.cars {
		s.advanceCar(c)
	}
	for _, p := range s.peds {
		p.Dist += p.Speed
		s.advancePedestrian(p)
	}
	s.reindex()
}

// carGroups lists the cars on each traversable, front-most first. Groups come
// in the order their first car appears in s.cars.
func (s *Simulation) carGroups() [][]*Car {
	var groups [][]*Car
	seen := make(map[mapmodel.Traversable]bool)
	for _, c := range s.cars {
		if seen[c.On] {
			continue
		}
		seen[c.On] = true
		groups = append(groups, s.carsOn[c.On])
	}
	return groups
}

// advanceCar moves a car that ran off its traversable onto the next one.
func (s *Simulation) advanceCar(c *Car) {
	for hops := 0; ; {
		length := s.length(c.On)
		if c.Dist <= length {
			return
		}
		if length == 0 {
			if hops++; hops > maxEmptyHops {
				c.Dist = 0
				return
			}
		}
		c.Dist -= length
		if lane, ok := c.On.AsLane(); ok {
			turns := s.turnsAt(lane, s.m.GetL(lane).DstI, false)
			if len(turns) == 0 {
				// Dead end: start the lane again.
				c.Dist = min(c.Length, length)
				return
			}
			c.On = mapmodel.OnTurn(turns[s.rng.Intn(len(turns))].ID)
			continue
		}
		t, _ := c.On.AsTurn()
		c.On = mapmodel.OnLane(t.Dst)
	}
}

// advancePedestrian moves a pedestrian that walked off its traversable.
func (s *Simulation) advancePedestrian(p *Pedestrian) {
	for hops := 0; ; {
		length := s.length(p.On)
		if p.Dist <= length {
			return
		}
		if length == 0 {
			if hops++; hops > maxEmptyHops {
				p.Dist = 0
				return
			}
		}
		p.Dist -= length
		if lane, ok := p.On.AsLane(); ok {
			l := s.m.GetL(lane)
			end := l.DstI
			if !p.Forwards {
				end = l.SrcI
			}
			turns := s.turnsAt(lane, end, true)
			if len(turns) == 0 {
				p.Forwards = !p.Forwards
				continue
			}
			p.On = mapmodel.OnTurn(turns[s.rng.Intn(len(turns))].ID)
			p.Forwards = true
			continue
		}
		t, _ := p.On.AsTurn()
		p.On = mapmodel.OnLane(t.Dst)
		p.Forwards = s.m.GetL(t.Dst).SrcI == t.Parent
	}
}

// turnsAt lists the turns leaving lane through intersection i.
func (s *Simulation) turnsAt(lane mapmodel.LaneID, i mapmodel.IntersectionID, walking bool) []*mapmodel.Turn {
	var out []*mapmodel.Turn
	for _, t := range s.m.GetTurnsFromLane(lane) {
		if t.ID.Parent != i {
			continue
		}
		if s.m.GetL(t.ID.Dst).IsSidewalk() != walking {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Simulation) length(on mapmodel.Traversable) float64 {
	if t, ok := on.AsTurn(); ok {
		return s.m.GetT(t).Length()
	}
	l, _ := on.AsLane()
	return s.m.GetL(l).Length()
}

func (s *Simulation) reindex() {
	s.carsOn = make(map[mapmodel.Traversable][]*Car)
	for _, c := range s.cars {
		s.carsOn[c.On] = append(s.carsOn[c.On], c)
	}
	for _, group := range s.carsOn {
		sort.SliceStable(group, func(a, b int) bool { return group[a].Dist > group[b].Dist })
	}
	s.pedsOn = make(map[mapmodel.Traversable][]*Pedestrian)
	for _, p := range s.peds {
		s.pedsOn[p.On] = append(s.pedsOn[p.On], p)
	}
}

// spaceOut pushes back cars spawned on top of each other.
func (s *Simulation) spaceOut() {
	for _, group := range s.carsOn {
		for i := 1; i < len(group); i++ {
			leader := group[i-1]
			if limit := leader.Dist - leader.Length - MinGap; group[i].Dist > limit {
				group[i].Dist = max(limit, 0)
			}
		}
	}
}

// Occupied reports whether any agent is on a lane or turn.
func (s *Simulation) Occupied(on mapmodel.Traversable) bool {
	return len(s.carsOn[on]) > 0 || len(s.pedsOn[on]) > 0
}

// GetDrawCars describes the vehicles on a lane or turn.
func (s *Simulation) GetDrawCars(on mapmodel.Traversable, m *mapmodel.Map) []sim.DrawCarInput {
	cars := s.carsOn[on]
	if len(cars) == 0 {
		return nil
	}
	geom := s.geometry(on, m)
	out := make([]sim.DrawCarInput, 0, len(cars))
	for _, c := range cars {
		front, angle := mapmodel.DistAlong(geom, c.Dist)
		out = append(out, sim.DrawCarInput{
			ID:      c.ID,
			Front:   front,
			Angle:   angle,
			Length:  c.Length,
			Width:   c.Width,
			On:      on,
			Waiting: c.Waiting,
		})
	}
	return out
}

// GetDrawPeds describes the pedestrians on a lane or turn.
func (s *Simulation) GetDrawPeds(on mapmodel.Traversable, m *mapmodel.Map) []sim.DrawPedestrianInput {
	peds := s.pedsOn[on]
	if len(peds) == 0 {
		return nil
	}
	geom := s.geometry(on, m)
	length := mapmodel.Length(geom)
	out := make([]sim.DrawPedestrianInput, 0, len(peds))
	for _, p := range peds {
		dist := p.Dist
		if !p.Forwards {
			dist = length - p.Dist
		}
		pos, _ := mapmodel.DistAlong(geom, dist)
		out = append(out, sim.DrawPedestrianInput{ID: p.ID, Pos: pos, Waiting: p.Waiting, On: on})
	}
	return out
}

func (s *Simulation) geometry(on mapmodel.Traversable, m *mapmodel.Map) orb.LineString {
	if t, ok := on.AsTurn(); ok {
		return m.GetT(t).Geom
	}
	l, _ := on.AsLane()
	return m.GetL(l).Center
}
