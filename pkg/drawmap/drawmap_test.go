package drawmap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/golangdaddy/citymap/pkg/config"
	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/golangdaddy/citymap/pkg/render"
	"github.com/golangdaddy/citymap/pkg/sim"
	"github.com/golangdaddy/citymap/pkg/traffic"
	"github.com/paulmach/orb"
)

var testGPS = mapmodel.NewGPSBounds(-122.30, 47.60, -122.29, 47.61)

// testMap is one road between two intersections, a building north of the
// road and a park under everything.
func testMap() *mapmodel.Map {
	m := mapmodel.NewMap("test", testGPS)
	i0 := m.AddIntersection(mapmodel.Intersection{Center: orb.Point{0, 0}, Polygon: mapmodel.RectRing(-5, -5, 5, 5)})
	i1 := m.AddIntersection(mapmodel.Intersection{Center: orb.Point{100, 0}, Polygon: mapmodel.RectRing(95, -5, 105, 5)})
	r := m.AddRoad(mapmodel.Road{Name: "Main", CenterPts: orb.LineString{{5, 0}, {95, 0}}, Layer: 1, SrcI: i0, DstI: i1})
	m.AddLane(mapmodel.Lane{Parent: r, Type: mapmodel.LaneDriving, Center: orb.LineString{{5, 0}, {95, 0}}, SrcI: i0, DstI: i1})
	m.AddBuilding(mapmodel.Building{Points: mapmodel.RectRing(45, 8, 55, 12), Address: "1 Main St", Layer: 2})
	m.AddParcel(mapmodel.Parcel{Points: mapmodel.RectRing(30, 6, 70, 18)})
	m.AddArea(mapmodel.Area{Type: mapmodel.AreaPark, Points: mapmodel.RectRing(-10, -20, 110, 20)})
	m.Finalize()
	return m
}

// addTurn adds a short turn leaving the end of src at the given heading.
func addTurn(m *mapmodel.Map, parent mapmodel.IntersectionID, src, dst mapmodel.LaneID, degrees float64) mapmodel.TurnID {
	l := m.GetL(src)
	start, _ := l.EndpointAt(parent)
	end := mapmodel.Project(start, mapmodel.Angle(degrees*math.Pi/180), 10)
	id := mapmodel.TurnID{Parent: parent, Src: src, Dst: dst}
	m.AddTurn(mapmodel.Turn{ID: id, Geom: orb.LineString{start, end}})
	return id
}

// turnMap is testMap plus a few lanes that turns can lead to.
func turnMap() *mapmodel.Map {
	m := testMap()
	for i := 0; i < 5; i++ {
		y := float64(-15 + 3*i)
		m.AddLane(mapmodel.Lane{Parent: 0, Type: mapmodel.LaneDriving, Center: orb.LineString{{5, y}, {95, y}}, SrcI: 0, DstI: 1})
	}
	m.Finalize()
	return m
}

type view struct {
	icons  bool
	hidden map[objects.ID]bool
}

func (v view) Show(id objects.ID) bool                   { return !v.hidden[id] }
func (v view) ShowIconsFor(mapmodel.IntersectionID) bool { return v.icons }

type fakeAgents struct {
	tick  sim.Tick
	cars  map[mapmodel.Traversable][]sim.DrawCarInput
	calls map[mapmodel.Traversable]int
}

func newFakeAgents() *fakeAgents {
	return &fakeAgents{
		cars:  make(map[mapmodel.Traversable][]sim.DrawCarInput),
		calls: make(map[mapmodel.Traversable]int),
	}
}

func (f *fakeAgents) Tick() sim.Tick { return f.tick }

func (f *fakeAgents) GetDrawCars(on mapmodel.Traversable, _ *mapmodel.Map) []sim.DrawCarInput {
	f.calls[on]++
	return f.cars[on]
}

func (f *fakeAgents) GetDrawPeds(mapmodel.Traversable, *mapmodel.Map) []sim.DrawPedestrianInput {
	return nil
}

type recordingTimer struct {
	phases []string
}

func (r *recordingTimer) Start(name string)            { r.phases = append(r.phases, name) }
func (r *recordingTimer) Stop(string)                  {}
func (r *recordingTimer) StartIter(name string, _ int) { r.phases = append(r.phases, name) }
func (r *recordingTimer) Next()                        {}

func build(t *testing.T, m *mapmodel.Map, flags config.Flags) *DrawMap {
	t.Helper()
	dm, err := New(context.Background(), m, flags, render.DefaultColorScheme(), render.NewPrerender(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return dm
}

func collect(dm *DrawMap, screen orb.Bound, m *mapmodel.Map, agents sim.GetDrawAgents, show ShowObjects, order RenderOrder) []objects.ID {
	var ids []objects.ID
	dm.HandleObjects(screen, m, agents, show, order, func(obj render.Renderable) bool {
		ids = append(ids, obj.ID())
		return true
	})
	return ids
}

// The viewport around the building misses both intersections.
var middle = orb.Bound{Min: orb.Point{40, -5}, Max: orb.Point{60, 15}}

func TestNewReportsPhases(t *testing.T) {
	m := testMap()
	timer := &recordingTimer{}
	if _, err := New(context.Background(), m, config.Flags{}, render.DefaultColorScheme(), render.NewPrerender(), timer); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"make DrawLanes", "make DrawTurns", "make DrawIntersections", "make DrawBuildings", "create quadtree"} {
		if !slices.Contains(timer.phases, want) {
			t.Fatalf("phases %v missing %q", timer.phases, want)
		}
	}
	if slices.Contains(timer.phases, "make DrawParcels") {
		t.Fatalf("parcels phase ran without the flag")
	}
}

func TestTurnOffsetsByAngle(t *testing.T) {
	m := turnMap()
	// Lane 0 runs from intersection 0 to 1.
	far170 := addTurn(m, 1, 0, 1, 170)
	far10 := addTurn(m, 1, 0, 2, 10)
	far90 := addTurn(m, 1, 0, 3, 90)
	near := addTurn(m, 0, 0, 4, 225)

	offsets := make(map[mapmodel.TurnID]int)
	computeTurnToLaneOffset(offsets, m.GetL(0), m)

	want := map[mapmodel.TurnID]int{far10: 0, far90: 1, far170: 2, near: 0}
	for id, off := range want {
		if offsets[id] != off {
			t.Errorf("%v: offset %d, want %d", id, offsets[id], off)
		}
	}
	if len(offsets) != len(want) {
		t.Fatalf("got %d offsets", len(offsets))
	}
}

func TestTurnOffsetsKeepMapOrderWithinADegree(t *testing.T) {
	m := turnMap()
	first := addTurn(m, 1, 0, 1, 10.7)
	second := addTurn(m, 1, 0, 2, 10.2)

	offsets := make(map[mapmodel.TurnID]int)
	computeTurnToLaneOffset(offsets, m.GetL(0), m)
	if offsets[first] != 0 || offsets[second] != 1 {
		t.Fatalf("offsets %v", offsets)
	}
}

func TestEveryGridTurnGetsADrawable(t *testing.T) {
	cfg := mapmodel.DefaultGridConfig()
	cfg.Rows, cfg.Cols = 3, 3
	m := mapmodel.NewGridCity(cfg)
	dm := build(t, m, config.Flags{DrawParcels: true})

	if len(dm.Turns) != len(m.AllTurns()) {
		t.Fatalf("%d DrawTurns for %d turns", len(dm.Turns), len(m.AllTurns()))
	}
	if len(dm.Lanes) != len(m.AllLanes()) || len(dm.Intersections) != len(m.AllIntersections()) {
		t.Fatalf("lanes %d/%d intersections %d/%d", len(dm.Lanes), len(m.AllLanes()), len(dm.Intersections), len(m.AllIntersections()))
	}
	if len(dm.BusStops) != len(m.AllBusStops()) {
		t.Fatalf("%d DrawBusStops for %d stops", len(dm.BusStops), len(m.AllBusStops()))
	}
	for id := range m.AllTurns() {
		if dm.GetT(id).ID() != objects.Turn(id) {
			t.Fatalf("wrong drawable for %v", id)
		}
	}
}

func TestHandleObjectsOrder(t *testing.T) {
	m := testMap()
	dm := build(t, m, config.Flags{})
	agents := newFakeAgents()
	show := view{icons: true}

	back := collect(dm, middle, m, agents, show, BackToFront)
	want := []objects.ID{objects.Area(0), objects.Lane(0), objects.Building(0)}
	if !slices.Equal(back, want) {
		t.Fatalf("BackToFront = %v, want %v", back, want)
	}

	front := collect(dm, middle, m, agents, show, FrontToBack)
	slices.Reverse(want)
	if !slices.Equal(front, want) {
		t.Fatalf("FrontToBack = %v, want %v", front, want)
	}
}

// flatMap puts one of each category on layer 0 around the east intersection.
// The index is filled in a different order than the categories are drawn.
func flatMap() (*mapmodel.Map, mapmodel.TurnID) {
	m := mapmodel.NewMap("flat", testGPS)
	i0 := m.AddIntersection(mapmodel.Intersection{Center: orb.Point{0, 0}, Polygon: mapmodel.RectRing(-5, -5, 5, 5)})
	i1 := m.AddIntersection(mapmodel.Intersection{Center: orb.Point{100, 0}, Polygon: mapmodel.RectRing(95, -5, 105, 5)})
	r := m.AddRoad(mapmodel.Road{Name: "Flat", CenterPts: orb.LineString{{5, 0}, {95, 0}}, SrcI: i0, DstI: i1})
	road := m.AddLane(mapmodel.Lane{Parent: r, Type: mapmodel.LaneDriving, Center: orb.LineString{{5, 0}, {95, 0}}, SrcI: i0, DstI: i1})
	walk := m.AddLane(mapmodel.Lane{Parent: r, Type: mapmodel.LaneSidewalk, Center: orb.LineString{{5, 3}, {95, 3}}, SrcI: i0, DstI: i1})
	m.AddBusStop(mapmodel.BusStop{ID: mapmodel.BusStopID{Sidewalk: walk}, DrivingLane: road, DistAlong: 80, SidewalkPos: orb.Point{85, 3}, DrivingPos: orb.Point{85, 0}})
	m.AddBuilding(mapmodel.Building{Points: mapmodel.RectRing(80, 8, 90, 12), Address: "2 Flat St"})
	m.AddParcel(mapmodel.Parcel{Points: mapmodel.RectRing(75, 6, 95, 18)})
	m.AddArea(mapmodel.Area{Type: mapmodel.AreaPark, Points: mapmodel.RectRing(70, -20, 110, 20)})
	turn := addTurn(m, i1, road, walk, 90)
	m.Finalize()
	return m, turn
}

func kinds(ids []objects.ID) []objects.Kind {
	out := make([]objects.Kind, len(ids))
	for i, id := range ids {
		out[i] = id.Kind()
	}
	return out
}

func TestHandleObjectsCategoryOrderOnOneLayer(t *testing.T) {
	m, turn := flatMap()
	dm := build(t, m, config.Flags{DrawParcels: true})
	east := orb.Bound{Min: orb.Point{70, -10}, Max: orb.Point{110, 20}}
	show := view{icons: true}

	back := collect(dm, east, m, newFakeAgents(), show, BackToFront)
	want := []objects.Kind{
		objects.KindArea,
		objects.KindParcel,
		objects.KindLane,
		objects.KindLane,
		objects.KindIntersection,
		objects.KindBuilding,
		objects.KindBusStop,
		objects.KindTurn,
	}
	if got := kinds(back); !slices.Equal(got, want) {
		t.Fatalf("BackToFront kinds = %v, want %v", got, want)
	}
	if back[len(back)-1] != objects.Turn(turn) || !slices.Contains(back, objects.Intersection(1)) {
		t.Fatalf("BackToFront = %v", back)
	}

	front := collect(dm, east, m, newFakeAgents(), show, FrontToBack)
	slices.Reverse(back)
	if !slices.Equal(front, back) {
		t.Fatalf("FrontToBack = %v, want %v", front, back)
	}
}

func TestHandleObjectsSkipsHidden(t *testing.T) {
	m := testMap()
	dm := build(t, m, config.Flags{})
	show := view{icons: true, hidden: map[objects.ID]bool{objects.Building(0): true}}

	got := collect(dm, middle, m, newFakeAgents(), show, BackToFront)
	if slices.Contains(got, objects.Building(0)) {
		t.Fatalf("hidden building was drawn: %v", got)
	}
}

func TestHandleObjectsEarlyAbort(t *testing.T) {
	m := testMap()
	dm := build(t, m, config.Flags{})

	calls := 0
	dm.HandleObjects(m.Bounds(), m, newFakeAgents(), view{icons: true}, BackToFront, func(render.Renderable) bool {
		calls++
		return calls < 2
	})
	if calls != 2 {
		t.Fatalf("callback ran %d times after asking to stop", calls)
	}
}

func TestAgentsFetchedOncePerTick(t *testing.T) {
	m := testMap()
	dm := build(t, m, config.Flags{})
	on := mapmodel.OnLane(0)
	agents := newFakeAgents()
	agents.cars[on] = []sim.DrawCarInput{{ID: 7, Front: orb.Point{52, 0}, Length: 4.5, Width: 2, On: on}}
	show := view{}

	got := collect(dm, middle, m, agents, show, BackToFront)
	want := []objects.ID{objects.Area(0), objects.Lane(0), objects.Car(7), objects.Building(0)}
	if !slices.Equal(got, want) {
		t.Fatalf("BackToFront = %v, want %v", got, want)
	}

	collect(dm, middle, m, agents, show, FrontToBack)
	if agents.calls[on] != 1 {
		t.Fatalf("fetched %d times in one tick", agents.calls[on])
	}

	agents.tick = agents.tick.Next()
	collect(dm, middle, m, agents, show, BackToFront)
	if agents.calls[on] != 2 {
		t.Fatalf("fetched %d times over two ticks", agents.calls[on])
	}
}

func TestIconsReplaceAgents(t *testing.T) {
	m := turnMap()
	id := addTurn(m, 1, 0, 1, 90)
	dm := build(t, m, config.Flags{})
	agents := newFakeAgents()

	got := collect(dm, m.Bounds(), m, agents, view{icons: true}, BackToFront)
	if !slices.Contains(got, objects.Turn(id)) {
		t.Fatalf("turn icon missing from %v", got)
	}
	if len(agents.calls) != 0 {
		t.Fatalf("agents fetched while icons shown: %v", agents.calls)
	}

	got = collect(dm, m.Bounds(), m, agents, view{}, BackToFront)
	if slices.Contains(got, objects.Turn(id)) {
		t.Fatalf("turn icon drawn while traffic shown")
	}
	if agents.calls[mapmodel.OnTurn(id)] != 1 {
		t.Fatalf("turn traffic fetched %d times", agents.calls[mapmodel.OnTurn(id)])
	}
}

func TestAgentInIndexPanics(t *testing.T) {
	m := testMap()
	dm := build(t, m, config.Flags{})
	dm.quadtree.Insert(objects.Car(1), orb.Bound{Min: orb.Point{50, 0}, Max: orb.Point{51, 1}})

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an agent in the index")
		}
	}()
	collect(dm, middle, m, newFakeAgents(), view{icons: true}, BackToFront)
}

func TestEditLaneTypeKeepsIndex(t *testing.T) {
	m := testMap()
	dm := build(t, m, config.Flags{})
	before := dm.Query(m.Bounds())
	lanesBefore := dm.GetMatchingLanes(m.Bounds())

	m.ChangeLaneType(0, mapmodel.LaneBiking)
	dm.EditLaneType(0, m, render.DefaultColorScheme(), render.NewPrerender())

	if got := dm.GetL(0).Type(); got != mapmodel.LaneBiking {
		t.Fatalf("lane type = %v", got)
	}
	if after := dm.Query(m.Bounds()); !slices.Equal(before, after) {
		t.Fatalf("index changed: %v -> %v", before, after)
	}
	if after := dm.GetMatchingLanes(m.Bounds()); !slices.Equal(lanesBefore, after) {
		t.Fatalf("matching lanes changed: %v -> %v", lanesBefore, after)
	}
}

func TestEditTurns(t *testing.T) {
	m := turnMap()
	addTurn(m, 1, 0, 1, 170)
	addTurn(m, 1, 0, 2, 10)
	id := addTurn(m, 1, 0, 3, 90)
	dm := build(t, m, config.Flags{})

	turn := *m.GetT(id)
	m.RemoveTurn(id)
	dm.EditRemoveTurn(id)
	if _, ok := dm.Turns[id]; ok {
		t.Fatalf("removed turn still has a drawable")
	}

	m.AddTurn(turn)
	dm.EditAddTurn(id, m)
	if got, want := dm.GetT(id).Center(), render.TurnIconCenter(&turn, m, 1); got != want {
		t.Fatalf("icon at %v, want %v", got, want)
	}
}

func TestEditAddTurnAwayFromLanePanics(t *testing.T) {
	m := turnMap()
	dm := build(t, m, config.Flags{})
	i2 := m.AddIntersection(mapmodel.Intersection{Center: orb.Point{50, 50}, Polygon: mapmodel.RectRing(45, 45, 55, 55)})
	id := mapmodel.TurnID{Parent: i2, Src: 0, Dst: 1}
	m.AddTurn(mapmodel.Turn{ID: id, Geom: orb.LineString{{50, 45}, {50, 55}}})

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for a turn that doesn't leave its lane")
		}
	}()
	dm.EditAddTurn(id, m)
}

func TestParcelsNeedTheFlag(t *testing.T) {
	m := testMap()

	dm := build(t, m, config.Flags{})
	if len(dm.Parcels) != 0 || slices.Contains(dm.Query(m.Bounds()), objects.Parcel(0)) {
		t.Fatalf("parcels built without the flag")
	}

	dm = build(t, m, config.Flags{DrawParcels: true})
	if len(dm.Parcels) != 1 || !slices.Contains(dm.Query(m.Bounds()), objects.Parcel(0)) {
		t.Fatalf("parcels missing with the flag")
	}
	if dm.GetObj(objects.Parcel(0)) != dm.GetP(0) {
		t.Fatalf("GetObj and GetP disagree")
	}
}

func TestExtraShapes(t *testing.T) {
	m := testMap()
	pt := testGPS.FromMap(orb.Point{50, 3})
	body := fmt.Sprintf(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[%.9f,%.9f]},"properties":{"name":"hydrant"}}]}`, pt[0], pt[1])
	path := filepath.Join(t.TempDir(), "shapes.geojson")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	dm := build(t, m, config.Flags{ExtraShapes: path})
	if len(dm.ExtraShapes) != 1 {
		t.Fatalf("%d extra shapes", len(dm.ExtraShapes))
	}
	if !slices.Contains(dm.Query(m.Bounds()), objects.ExtraShape(0)) {
		t.Fatalf("extra shape not indexed")
	}
	if side, ok := dm.GetES(0).Road(); !ok || side.Road != 0 {
		t.Fatalf("matched road %v %v", side, ok)
	}
}

func TestMissingExtraShapesFailsBuild(t *testing.T) {
	m := testMap()
	flags := config.Flags{ExtraShapes: filepath.Join(t.TempDir(), "missing.geojson")}
	_, err := New(context.Background(), m, flags, render.DefaultColorScheme(), render.NewPrerender(), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}

func TestHandleObjectsWithTraffic(t *testing.T) {
	cfg := mapmodel.DefaultGridConfig()
	cfg.Rows, cfg.Cols = 2, 3
	m := mapmodel.NewGridCity(cfg)
	dm := build(t, m, config.Flags{})
	s := traffic.New(m, traffic.DefaultConfig())
	s.Step()

	last := math.MinInt
	cars := 0
	dm.HandleObjects(m.Bounds(), m, s, view{}, BackToFront, func(obj render.Renderable) bool {
		if obj.ZOrder() < last {
			t.Fatalf("%v at z %d after z %d", obj.ID(), obj.ZOrder(), last)
		}
		last = obj.ZOrder()
		if obj.ID().Kind() == objects.KindCar {
			cars++
		}
		return true
	})
	if cars != len(s.Cars()) {
		t.Fatalf("drew %d of %d cars", cars, len(s.Cars()))
	}
}
