package mapmodel

import (
	"fmt"
	"math"

	"github.com/golangdaddy/citymap/pkg/spatial"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// RoadSide is one direction of a road.
type RoadSide struct {
	Road     RoadID
	Forwards bool
}

func (r RoadSide) String() string {
	if r.Forwards {
		return fmt.Sprintf("Road(%d) fwd", r.Road)
	}
	return fmt.Sprintf("Road(%d) back", r.Road)
}

// FindClosest answers "which registered polyline is nearest to this point".
type FindClosest[K comparable] struct {
	index *spatial.QuadTree[int]
	keys  []K
	geoms []orb.LineString
}

// NewFindClosest covers the given map bounds.
func NewFindClosest[K comparable](bounds orb.Bound) *FindClosest[K] {
	return &FindClosest[K]{index: spatial.New[int](bounds)}
}

// Add registers a polyline under key.
func (f *FindClosest[K]) Add(key K, pts orb.LineString) {
	f.index.Insert(len(f.keys), pts.Bound())
	f.keys = append(f.keys, key)
	f.geoms = append(f.geoms, pts)
}

// Closest returns the key of the nearest polyline within maxDist of pt and the
// distance to it.
func (f *FindClosest[K]) Closest(pt orb.Point, maxDist float64) (K, float64, bool) {
	var (
		best    K
		bestD   = math.Inf(1)
		matched bool
	)
	search := orb.Bound{Min: pt, Max: pt}.Pad(maxDist)
	f.index.QueryFunc(search, func(idx int, _ orb.Bound) bool {
		d := planar.DistanceFrom(f.geoms[idx], pt)
		if d <= maxDist && d < bestD {
			best, bestD, matched = f.keys[idx], d, true
		}
		return true
	})
	return best, bestD, matched
}
