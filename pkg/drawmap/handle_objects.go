package drawmap

import (
	"fmt"
	"slices"
	"sort"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/golangdaddy/citymap/pkg/render"
	"github.com/golangdaddy/citymap/pkg/sim"
	"github.com/paulmach/orb"
)

// RenderOrder picks the direction HandleObjects walks the sorted objects.
type RenderOrder int

const (
	// BackToFront is painting order.
	BackToFront RenderOrder = iota
	// FrontToBack is hit-testing order: the first match is the one on top.
	FrontToBack
)

func (o RenderOrder) String() string {
	if o == FrontToBack {
		return "FrontToBack"
	}
	return "BackToFront"
}

// ShowObjects decides what the current view wants to see.
type ShowObjects interface {
	// Show reports whether a static object should be drawn at all.
	Show(id objects.ID) bool
	// ShowIconsFor reports whether turn icons replace the traffic at an
	// intersection and on the lanes leading into it.
	ShowIconsFor(i mapmodel.IntersectionID) bool
}

// Category buckets, concatenated in this order before sorting.
const (
	bucketAreas = iota
	bucketParcels
	bucketLanes
	bucketIntersections
	bucketBuildings
	bucketExtraShapes
	bucketBusStops
	bucketTurnIcons
	numBuckets
)

// HandleObjects calls fn with every object visible in screen, sorted by
// z-order, until fn returns false. Objects sharing a z-order keep their
// category order, with agents after everything static. Agents are built at
// most once per tick for each lane or turn; later calls in the same tick
// reuse them.
func (dm *DrawMap) HandleObjects(screen orb.Bound, m *mapmodel.Map, agents sim.GetDrawAgents, show ShowObjects, order RenderOrder, fn func(obj render.Renderable) bool) {
	tick := agents.Tick()

	var buckets [numBuckets][]render.Renderable
	var agentsOn []mapmodel.Traversable

	for _, id := range dm.quadtree.Query(screen) {
		if !show.Show(id) {
			continue
		}
		switch id.Kind() {
		case objects.KindArea:
			buckets[bucketAreas] = append(buckets[bucketAreas], dm.GetObj(id))
		case objects.KindParcel:
			buckets[bucketParcels] = append(buckets[bucketParcels], dm.GetObj(id))
		case objects.KindLane:
			l, _ := id.AsLane()
			buckets[bucketLanes] = append(buckets[bucketLanes], dm.GetL(l))
			if !show.ShowIconsFor(m.GetL(l).DstI) {
				on := mapmodel.OnLane(l)
				dm.populateAgents(tick, on, m, agents)
				agentsOn = append(agentsOn, on)
			}
		case objects.KindIntersection:
			i, _ := id.AsIntersection()
			buckets[bucketIntersections] = append(buckets[bucketIntersections], dm.GetI(i))
			for _, t := range m.GetI(i).Turns {
				if show.ShowIconsFor(i) {
					buckets[bucketTurnIcons] = append(buckets[bucketTurnIcons], dm.GetT(t))
				} else {
					on := mapmodel.OnTurn(t)
					dm.populateAgents(tick, on, m, agents)
					agentsOn = append(agentsOn, on)
				}
			}
		case objects.KindBuilding:
			buckets[bucketBuildings] = append(buckets[bucketBuildings], dm.GetObj(id))
		case objects.KindExtraShape:
			buckets[bucketExtraShapes] = append(buckets[bucketExtraShapes], dm.GetObj(id))
		case objects.KindBusStop:
			buckets[bucketBusStops] = append(buckets[bucketBusStops], dm.GetObj(id))
		default:
			panic(fmt.Sprintf("%v shouldn't be in the quadtree", id))
		}
	}

	var all []render.Renderable
	for _, b := range buckets {
		all = append(all, b...)
	}
	for _, on := range agentsOn {
		all = append(all, dm.agents.Get(on)...)
	}

	sort.SliceStable(all, func(a, b int) bool {
		return all[a].ZOrder() < all[b].ZOrder()
	})
	if order == FrontToBack {
		slices.Reverse(all)
	}

	for _, obj := range all {
		if !fn(obj) {
			return
		}
	}
}

// populateAgents builds the drawables for everything on one lane or turn,
// unless that already happened this tick.
func (dm *DrawMap) populateAgents(tick sim.Tick, on mapmodel.Traversable, m *mapmodel.Map, agents sim.GetDrawAgents) {
	if dm.agents.Has(tick, on) {
		return
	}
	var list []render.Renderable
	for _, c := range agents.GetDrawCars(on, m) {
		list = append(list, render.NewDrawVehicle(c, m, dm.cs))
	}
	for _, p := range agents.GetDrawPeds(on, m) {
		list = append(list, render.NewDrawPedestrian(p, m, dm.cs))
	}
	dm.agents.Put(tick, on, list)
}
