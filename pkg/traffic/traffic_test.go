package traffic

import (
	"testing"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/sim"
	"github.com/paulmach/orb"
)

func newTestSim(seed int64) (*mapmodel.Map, *Simulation) {
	m := mapmodel.NewGridCity(mapmodel.DefaultGridConfig())
	cfg := DefaultConfig()
	cfg.Seed = seed
	cfg.Cars = 40
	cfg.Pedestrians = 40
	// Fast enough that agents cross several lanes and turns.
	cfg.CarSpeed, cfg.BikeSpeed, cfg.PedestrianSpeed = 2, 1, 0.5
	return m, New(m, cfg)
}

func TestStepIsDeterministic(t *testing.T) {
	_, a := newTestSim(42)
	_, b := newTestSim(42)
	for i := 0; i < 300; i++ {
		a.Step()
		b.Step()
	}
	if a.Tick() != 300 || b.Tick() != 300 {
		t.Fatalf("ticks = %d, %d", a.Tick(), b.Tick())
	}
	for i := range a.Cars() {
		ca, cb := a.Cars()[i], b.Cars()[i]
		if ca.On != cb.On || ca.Dist != cb.Dist {
			t.Fatalf("car %d diverged: %v@%v vs %v@%v", i, ca.On, ca.Dist, cb.On, cb.Dist)
		}
	}
	for i := range a.Pedestrians() {
		pa, pb := a.Pedestrians()[i], b.Pedestrians()[i]
		if pa.On != pb.On || pa.Dist != pb.Dist {
			t.Fatalf("pedestrian %d diverged", i)
		}
	}
}

func TestAgentsStayOnTheirTraversable(t *testing.T) {
	m, s := newTestSim(3)
	movedOntoTurn := false
	for i := 0; i < 500; i++ {
		s.Step()
		for _, c := range s.Cars() {
			if c.Dist < 0 || c.Dist > s.length(c.On)+1e-9 {
				t.Fatalf("car %d at %v on %v of length %v", c.ID, c.Dist, c.On, s.length(c.On))
			}
			if lane, ok := c.On.AsLane(); ok && m.GetL(lane).IsSidewalk() {
				t.Fatalf("car %d on sidewalk %d", c.ID, lane)
			}
			if _, ok := c.On.AsTurn(); ok {
				movedOntoTurn = true
			}
		}
		for _, p := range s.Pedestrians() {
			if lane, ok := p.On.AsLane(); ok && !m.GetL(lane).IsSidewalk() {
				t.Fatalf("pedestrian %d on road lane %d", p.ID, lane)
			}
		}
	}
	if !movedOntoTurn {
		t.Fatalf("no car ever took a turn")
	}
}

func TestDrawInputsCoverEveryAgent(t *testing.T) {
	m, s := newTestSim(9)
	for i := 0; i < 50; i++ {
		s.Step()
	}
	var on []mapmodel.Traversable
	for _, l := range m.AllLanes() {
		on = append(on, mapmodel.OnLane(l.ID))
	}
	for _, id := range m.SortedTurnIDs() {
		on = append(on, mapmodel.OnTurn(id))
	}

	cars := map[sim.CarID]bool{}
	peds := map[sim.PedestrianID]bool{}
	for _, tr := range on {
		for _, c := range s.GetDrawCars(tr, m) {
			if c.On != tr {
				t.Fatalf("car %d reported on %v, asked for %v", c.ID, c.On, tr)
			}
			cars[c.ID] = true
		}
		for _, p := range s.GetDrawPeds(tr, m) {
			peds[p.ID] = true
		}
	}
	if len(cars) != len(s.Cars()) || len(peds) != len(s.Pedestrians()) {
		t.Fatalf("drawn %d cars of %d, %d pedestrians of %d", len(cars), len(s.Cars()), len(peds), len(s.Pedestrians()))
	}
}

func TestOccupied(t *testing.T) {
	m, s := newTestSim(3)
	c := s.Cars()[0]
	if !s.Occupied(c.On) {
		t.Fatalf("%v holds car %d but isn't occupied", c.On, c.ID)
	}
	busy := map[mapmodel.Traversable]bool{}
	for _, c := range s.Cars() {
		busy[c.On] = true
	}
	for _, p := range s.Pedestrians() {
		busy[p.On] = true
	}
	for _, l := range m.AllLanes() {
		on := mapmodel.OnLane(l.ID)
		if s.Occupied(on) != busy[on] {
			t.Fatalf("Occupied(%v) = %v", on, s.Occupied(on))
		}
	}
}

func TestZeroLengthSegmentsDontStall(t *testing.T) {
	m := mapmodel.NewMap("degenerate", mapmodel.NewGPSBounds(0, 0, 0.01, 0.01))
	i0 := m.AddIntersection(mapmodel.Intersection{Center: orb.Point{0, 0}})
	i1 := m.AddIntersection(mapmodel.Intersection{Center: orb.Point{10, 0}})
	r := m.AddRoad(mapmodel.Road{Name: "Stub", CenterPts: orb.LineString{{5, 0}, {5, 0}}, SrcI: i0, DstI: i1})
	// A driving lane that loops onto itself through an empty turn, and a
	// sidewalk with nowhere to go.
	lane := m.AddLane(mapmodel.Lane{Parent: r, Type: mapmodel.LaneDriving, Center: orb.LineString{{5, 0}, {5, 0}}, SrcI: i0, DstI: i1})
	m.AddLane(mapmodel.Lane{Parent: r, Type: mapmodel.LaneSidewalk, Center: orb.LineString{{5, 1}, {5, 1}}, SrcI: i0, DstI: i1})
	m.AddTurn(mapmodel.Turn{ID: mapmodel.TurnID{Parent: i1, Src: lane, Dst: lane}, Geom: orb.LineString{{5, 0}, {5, 0}}})

	s := New(m, Config{Cars: 1, Pedestrians: 1, Seed: 1, CarSpeed: 1, PedestrianSpeed: 1})
	for i := 0; i < 3; i++ {
		s.Step()
	}
	if c := s.Cars()[0]; c.Dist != 0 {
		t.Fatalf("car at %v on %v", c.Dist, c.On)
	}
	if p := s.Pedestrians()[0]; p.Dist != 0 {
		t.Fatalf("pedestrian at %v on %v", p.Dist, p.On)
	}
}
