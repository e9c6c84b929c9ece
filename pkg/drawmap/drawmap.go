// Package drawmap holds every drawable for a map, a spatial index over them,
// and the per-tick cache of agent drawables. HandleObjects turns a viewport
// into a sorted stream of things to draw.
package drawmap

import (
	"context"
	"fmt"
	"sort"

	"github.com/golangdaddy/citymap/pkg/agentcache"
	"github.com/golangdaddy/citymap/pkg/config"
	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/golangdaddy/citymap/pkg/progress"
	"github.com/golangdaddy/citymap/pkg/render"
	"github.com/golangdaddy/citymap/pkg/shapes"
	"github.com/golangdaddy/citymap/pkg/spatial"
	"github.com/paulmach/orb"
)

// DrawMap is built once per map. Edits replace single entries; the spatial
// index is never updated after New, so an edit must not move an object.
type DrawMap struct {
	Lanes         []*render.DrawLane
	Intersections []*render.DrawIntersection
	Turns         map[mapmodel.TurnID]*render.DrawTurn
	Buildings     []*render.DrawBuilding
	Parcels       []*render.DrawParcel
	ExtraShapes   []*render.DrawExtraShape
	BusStops      map[mapmodel.BusStopID]*render.DrawBusStop
	Areas         []*render.DrawArea

	cs       *render.ColorScheme
	agents   *agentcache.Cache[mapmodel.Traversable, render.Renderable]
	quadtree *spatial.QuadTree[objects.ID]
}

// New builds every drawable of m and indexes them. Failing to load the
// configured extra shapes fails the whole build.
func New(ctx context.Context, m *mapmodel.Map, flags config.Flags, cs *render.ColorScheme, p *render.Prerender, timer progress.Timer) (*DrawMap, error) {
	if timer == nil {
		timer = progress.Nop{}
	}

	timer.StartIter("make DrawLanes", len(m.AllLanes()))
	lanes := make([]*render.DrawLane, 0, len(m.AllLanes()))
	for _, l := range m.AllLanes() {
		timer.Next()
		lanes = append(lanes, render.NewDrawLane(l, m, cs, p))
	}

	turnToLaneOffset := make(map[mapmodel.TurnID]int)
	for _, l := range m.AllLanes() {
		computeTurnToLaneOffset(turnToLaneOffset, l, m)
	}
	if len(turnToLaneOffset) != len(m.AllTurns()) {
		panic(fmt.Sprintf("%d turn offsets for %d turns", len(turnToLaneOffset), len(m.AllTurns())))
	}

	timer.StartIter("make DrawTurns", len(m.AllTurns()))
	turns := make(map[mapmodel.TurnID]*render.DrawTurn, len(m.AllTurns()))
	for _, id := range m.SortedTurnIDs() {
		timer.Next()
		turns[id] = render.NewDrawTurn(m.GetT(id), m, turnToLaneOffset[id], cs)
	}

	timer.StartIter("make DrawIntersections", len(m.AllIntersections()))
	intersections := make([]*render.DrawIntersection, 0, len(m.AllIntersections()))
	for _, i := range m.AllIntersections() {
		timer.Next()
		intersections = append(intersections, render.NewDrawIntersection(i, cs, p))
	}

	timer.StartIter("make DrawBuildings", len(m.AllBuildings()))
	buildings := make([]*render.DrawBuilding, 0, len(m.AllBuildings()))
	for _, b := range m.AllBuildings() {
		timer.Next()
		buildings = append(buildings, render.NewDrawBuilding(b, cs, p))
	}

	var parcels []*render.DrawParcel
	if flags.DrawParcels {
		timer.StartIter("make DrawParcels", len(m.AllParcels()))
		for _, pc := range m.AllParcels() {
			timer.Next()
			parcels = append(parcels, render.NewDrawParcel(pc, cs, p))
		}
	}

	var extraShapes []*render.DrawExtraShape
	if flags.ExtraShapes != "" {
		raw, err := shapes.Load(ctx, flags.ExtraShapes)
		if err != nil {
			return nil, fmt.Errorf("couldn't load extra shapes: %w", err)
		}

		// Match shapes with the nearest road and direction.
		closest := mapmodel.NewFindClosest[mapmodel.RoadSide](m.Bounds())
		for _, r := range m.AllRoads() {
			closest.Add(mapmodel.RoadSide{Road: r.ID, Forwards: true}, mapmodel.ShiftRight(r.CenterPts, mapmodel.LaneThickness))
			closest.Add(mapmodel.RoadSide{Road: r.ID, Forwards: false}, mapmodel.ShiftLeft(r.CenterPts, mapmodel.LaneThickness))
		}

		timer.StartIter("make DrawExtraShapes", len(raw.Shapes))
		for _, s := range raw.Shapes {
			timer.Next()
			id := objects.ExtraShapeID(len(extraShapes))
			if es, ok := render.NewExtraShape(id, s, m.GPSBounds(), closest, cs); ok {
				extraShapes = append(extraShapes, es)
			}
		}
	}

	busStopIDs := make([]mapmodel.BusStopID, 0, len(m.AllBusStops()))
	for id := range m.AllBusStops() {
		busStopIDs = append(busStopIDs, id)
	}
	sort.Slice(busStopIDs, func(a, b int) bool {
		x, y := busStopIDs[a], busStopIDs[b]
		if x.Sidewalk != y.Sidewalk {
			return x.Sidewalk < y.Sidewalk
		}
		return x.Idx < y.Idx
	})
	busStops := make(map[mapmodel.BusStopID]*render.DrawBusStop, len(busStopIDs))
	for _, id := range busStopIDs {
		busStops[id] = render.NewDrawBusStop(m.GetBS(id), m, cs, p)
	}

	areas := make([]*render.DrawArea, 0, len(m.AllAreas()))
	for _, a := range m.AllAreas() {
		areas = append(areas, render.NewDrawArea(a, cs, p))
	}

	timer.Start("create quadtree")
	quadtree := spatial.New[objects.ID](m.Bounds())
	for _, obj := range lanes {
		quadtree.Insert(obj.ID(), obj.Bounds())
	}
	for _, obj := range intersections {
		quadtree.Insert(obj.ID(), obj.Bounds())
	}
	for _, obj := range buildings {
		quadtree.Insert(obj.ID(), obj.Bounds())
	}
	for _, obj := range parcels {
		quadtree.Insert(obj.ID(), obj.Bounds())
	}
	for _, obj := range extraShapes {
		quadtree.Insert(obj.ID(), obj.Bounds())
	}
	for _, id := range busStopIDs {
		obj := busStops[id]
		quadtree.Insert(obj.ID(), obj.Bounds())
	}
	for _, obj := range areas {
		quadtree.Insert(obj.ID(), obj.Bounds())
	}
	timer.Stop("create quadtree")

	return &DrawMap{
		Lanes:         lanes,
		Intersections: intersections,
		Turns:         turns,
		Buildings:     buildings,
		Parcels:       parcels,
		ExtraShapes:   extraShapes,
		BusStops:      busStops,
		Areas:         areas,

		cs:       cs,
		agents:   agentcache.New[mapmodel.Traversable, render.Renderable](),
		quadtree: quadtree,
	}, nil
}

// computeTurnToLaneOffset numbers the turns leaving l so their icons don't
// overlap. Turns through the far end and the near end are numbered
// separately, each in order of angle.
func computeTurnToLaneOffset(result map[mapmodel.TurnID]int, l *mapmodel.Lane, m *mapmodel.Map) {
	// Split into two groups, based on the endpoint.
	var far, near []*mapmodel.Turn
	for _, t := range m.GetTurnsFromLane(l.ID) {
		if t.ID.Parent == l.DstI {
			far = append(far, t)
		} else {
			near = append(near, t)
		}
	}

	// Sort the turn icons by angle. Whole degrees only, so nearly parallel
	// turns keep the order the map lists them in.
	for _, group := range [][]*mapmodel.Turn{far, near} {
		sort.SliceStable(group, func(a, b int) bool {
			return int64(group[a].Angle().NormalizedDegrees()) < int64(group[b].Angle().NormalizedDegrees())
		})
		for idx, t := range group {
			result[t.ID] = idx
		}
	}
}

// EditLaneType rebuilds one lane after its type changed. The index is left
// alone; a lane's bounds don't depend on its type.
func (dm *DrawMap) EditLaneType(id mapmodel.LaneID, m *mapmodel.Map, cs *render.ColorScheme, p *render.Prerender) {
	dm.Lanes[id] = render.NewDrawLane(m.GetL(id), m, cs, p)
}

// EditRemoveTurn drops the drawable for a turn that was removed from the map.
func (dm *DrawMap) EditRemoveTurn(id mapmodel.TurnID) {
	delete(dm.Turns, id)
}

// EditAddTurn builds the drawable for a turn that was added to the map.
func (dm *DrawMap) EditAddTurn(id mapmodel.TurnID, m *mapmodel.Map) {
	t := m.GetT(id)
	offsets := make(map[mapmodel.TurnID]int)
	computeTurnToLaneOffset(offsets, m.GetL(id.Src), m)
	offset, ok := offsets[id]
	if !ok {
		panic(fmt.Sprintf("%v doesn't start at either end of lane %d", id, id.Src))
	}
	dm.Turns[id] = render.NewDrawTurn(t, m, offset, dm.cs)
}

// GetL returns the drawable for a lane.
func (dm *DrawMap) GetL(id mapmodel.LaneID) *render.DrawLane {
	return dm.Lanes[id]
}

// GetI returns the drawable for an intersection.
func (dm *DrawMap) GetI(id mapmodel.IntersectionID) *render.DrawIntersection {
	return dm.Intersections[id]
}

// GetT returns the drawable for a turn.
func (dm *DrawMap) GetT(id mapmodel.TurnID) *render.DrawTurn {
	t, ok := dm.Turns[id]
	if !ok {
		panic(fmt.Sprintf("no DrawTurn for %v", id))
	}
	return t
}

// GetB returns the drawable for a building.
func (dm *DrawMap) GetB(id mapmodel.BuildingID) *render.DrawBuilding {
	return dm.Buildings[id]
}

// GetP returns the drawable for a parcel.
func (dm *DrawMap) GetP(id mapmodel.ParcelID) *render.DrawParcel {
	return dm.Parcels[id]
}

// GetES returns the drawable for an extra shape.
func (dm *DrawMap) GetES(id objects.ExtraShapeID) *render.DrawExtraShape {
	return dm.ExtraShapes[id]
}

// GetBS returns the drawable for a bus stop.
func (dm *DrawMap) GetBS(id mapmodel.BusStopID) *render.DrawBusStop {
	s, ok := dm.BusStops[id]
	if !ok {
		panic(fmt.Sprintf("no DrawBusStop for %v", id))
	}
	return s
}

// GetA returns the drawable for an area.
func (dm *DrawMap) GetA(id mapmodel.AreaID) *render.DrawArea {
	return dm.Areas[id]
}

// GetObj returns the drawable of a static object. Agents aren't kept past
// their tick, so their ids return nil.
func (dm *DrawMap) GetObj(id objects.ID) render.Renderable {
	switch id.Kind() {
	case objects.KindLane:
		l, _ := id.AsLane()
		return dm.GetL(l)
	case objects.KindIntersection:
		i, _ := id.AsIntersection()
		return dm.GetI(i)
	case objects.KindTurn:
		t, _ := id.AsTurn()
		return dm.GetT(t)
	case objects.KindBuilding:
		b, _ := id.AsBuilding()
		return dm.GetB(b)
	case objects.KindParcel:
		p, _ := id.AsParcel()
		return dm.GetP(p)
	case objects.KindExtraShape:
		es, _ := id.AsExtraShape()
		return dm.GetES(es)
	case objects.KindBusStop:
		bs, _ := id.AsBusStop()
		return dm.GetBS(bs)
	case objects.KindArea:
		a, _ := id.AsArea()
		return dm.GetA(a)
	}
	return nil
}

// GetMatchingLanes lists the lanes whose bounds touch bounds.
func (dm *DrawMap) GetMatchingLanes(bounds orb.Bound) []mapmodel.LaneID {
	var results []mapmodel.LaneID
	dm.quadtree.QueryFunc(bounds, func(id objects.ID, _ orb.Bound) bool {
		if l, ok := id.AsLane(); ok {
			results = append(results, l)
		}
		return true
	})
	return results
}

// Query lists every indexed object whose bounds touch bounds.
func (dm *DrawMap) Query(bounds orb.Bound) []objects.ID {
	return dm.quadtree.Query(bounds)
}
