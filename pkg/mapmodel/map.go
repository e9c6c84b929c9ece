package mapmodel

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

// Map is the static city: every lookup by a dense id indexes a slice, and an
// unknown id panics.
type Map struct {
	name          string
	roads         []*Road
	lanes         []*Lane
	intersections []*Intersection
	turns         map[TurnID]*Turn
	buildings     []*Building
	parcels       []*Parcel
	busStops      map[BusStopID]*BusStop
	areas         []*Area

	bounds    orb.Bound
	gpsBounds GPSBounds
}

// NewMap creates an empty map. Callers fill it with the Add methods; bounds
// are recomputed by Finalize.
func NewMap(name string, gps GPSBounds) *Map {
	return &Map{
		name:      name,
		turns:     make(map[TurnID]*Turn),
		busStops:  make(map[BusStopID]*BusStop),
		gpsBounds: gps,
	}
}

// Name of the map.
func (m *Map) Name() string { return m.name }

// AddRoad appends a road and assigns its id.
func (m *Map) AddRoad(r Road) RoadID {
	r.ID = RoadID(len(m.roads))
	m.roads = append(m.roads, &r)
	return r.ID
}

// AddLane appends a lane and links it to its road.
func (m *Map) AddLane(l Lane) LaneID {
	l.ID = LaneID(len(m.lanes))
	m.lanes = append(m.lanes, &l)
	r := m.GetR(l.Parent)
	r.Lanes = append(r.Lanes, l.ID)
	return l.ID
}

// AddIntersection appends an intersection and assigns its id.
func (m *Map) AddIntersection(i Intersection) IntersectionID {
	i.ID = IntersectionID(len(m.intersections))
	m.intersections = append(m.intersections, &i)
	return i.ID
}

// AddBuilding appends a building and assigns its id.
func (m *Map) AddBuilding(b Building) BuildingID {
	b.ID = BuildingID(len(m.buildings))
	m.buildings = append(m.buildings, &b)
	return b.ID
}

// AddParcel appends a parcel and assigns its id.
func (m *Map) AddParcel(p Parcel) ParcelID {
	p.ID = ParcelID(len(m.parcels))
	m.parcels = append(m.parcels, &p)
	return p.ID
}

// AddArea appends an area and assigns its id.
func (m *Map) AddArea(a Area) AreaID {
	a.ID = AreaID(len(m.areas))
	m.areas = append(m.areas, &a)
	return a.ID
}

// AddBusStop places a stop on a sidewalk; the index within the sidewalk is assigned here.
func (m *Map) AddBusStop(s BusStop) BusStopID {
	sidewalk := m.GetL(s.ID.Sidewalk)
	s.ID.Idx = len(sidewalk.BusStops)
	sidewalk.BusStops = append(sidewalk.BusStops, s.ID)
	m.busStops[s.ID] = &s
	return s.ID
}

// AddTurn registers a turn and lists it on its intersection.
func (m *Map) AddTurn(t Turn) {
	if _, ok := m.turns[t.ID]; ok {
		panic(fmt.Sprintf("%v already exists", t.ID))
	}
	m.turns[t.ID] = &t
	i := m.GetI(t.ID.Parent)
	i.Turns = append(i.Turns, t.ID)
}

// RemoveTurn deletes a turn from the map and from its intersection.
func (m *Map) RemoveTurn(id TurnID) {
	if _, ok := m.turns[id]; !ok {
		panic(fmt.Sprintf("%v doesn't exist", id))
	}
	delete(m.turns, id)
	i := m.GetI(id.Parent)
	for idx, t := range i.Turns {
		if t == id {
			i.Turns = append(i.Turns[:idx], i.Turns[idx+1:]...)
			break
		}
	}
}

// ChangeLaneType edits a lane in place. Geometry is unchanged.
func (m *Map) ChangeLaneType(id LaneID, lt LaneType) {
	m.GetL(id).Type = lt
}

// Finalize recomputes the map bounds from every piece of geometry.
func (m *Map) Finalize() {
	var b orb.Bound
	first := true
	extend := func(pts []orb.Point) {
		for _, pt := range pts {
			if first {
				b = orb.Bound{Min: pt, Max: pt}
				first = false
				continue
			}
			b = b.Extend(pt)
		}
	}
	for _, l := range m.lanes {
		extend(ThickRing(l.Center, LaneThickness))
	}
	for _, i := range m.intersections {
		extend(i.Polygon)
	}
	for _, bldg := range m.buildings {
		extend(bldg.Points)
	}
	for _, p := range m.parcels {
		extend(p.Points)
	}
	for _, a := range m.areas {
		extend(a.Points)
	}
	m.bounds = b
}

// Bounds covers all map geometry in map space.
func (m *Map) Bounds() orb.Bound { return m.bounds }

// GPSBounds is the lon/lat extent of the map.
func (m *Map) GPSBounds() GPSBounds { return m.gpsBounds }

// AllRoads in id order.
func (m *Map) AllRoads() []*Road { return m.roads }

// AllLanes in id order.
func (m *Map) AllLanes() []*Lane { return m.lanes }

// AllIntersections in id order.
func (m *Map) AllIntersections() []*Intersection { return m.intersections }

// AllTurns keyed by id.
func (m *Map) AllTurns() map[TurnID]*Turn { return m.turns }

// AllBuildings in id order.
func (m *Map) AllBuildings() []*Building { return m.buildings }

// AllParcels in id order.
func (m *Map) AllParcels() []*Parcel { return m.parcels }

// AllBusStops keyed by id.
func (m *Map) AllBusStops() map[BusStopID]*BusStop { return m.busStops }

// AllAreas in id order.
func (m *Map) AllAreas() []*Area { return m.areas }

// GetR looks up a road.
func (m *Map) GetR(id RoadID) *Road { return m.roads[id] }

// GetL looks up a lane.
func (m *Map) GetL(id LaneID) *Lane { return m.lanes[id] }

// GetI looks up an intersection.
func (m *Map) GetI(id IntersectionID) *Intersection { return m.intersections[id] }

// GetT looks up a turn.
func (m *Map) GetT(id TurnID) *Turn {
	t, ok := m.turns[id]
	if !ok {
		panic(fmt.Sprintf("%v doesn't exist", id))
	}
	return t
}

// GetBS looks up a bus stop.
func (m *Map) GetBS(id BusStopID) *BusStop {
	s, ok := m.busStops[id]
	if !ok {
		panic(fmt.Sprintf("%v doesn't exist", id))
	}
	return s
}

// GetTurnsFromLane lists the turns starting at a lane, ordered as they appear
// on their intersections.
func (m *Map) GetTurnsFromLane(id LaneID) []*Turn {
	l := m.GetL(id)
	var out []*Turn
	seen := map[IntersectionID]bool{}
	for _, i := range []IntersectionID{l.SrcI, l.DstI} {
		if seen[i] {
			continue
		}
		seen[i] = true
		for _, t := range m.GetI(i).Turns {
			if t.Src == id {
				out = append(out, m.turns[t])
			}
		}
	}
	return out
}

// SortedTurnIDs returns every turn id in a stable order.
func (m *Map) SortedTurnIDs() []TurnID {
	ids := make([]TurnID, 0, len(m.turns))
	for id := range m.turns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		x, y := ids[a], ids[b]
		if x.Parent != y.Parent {
			return x.Parent < y.Parent
		}
		if x.Src != y.Src {
			return x.Src < y.Src
		}
		return x.Dst < y.Dst
	})
	return ids
}
