package spatial

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/paulmach/orb"
)

func box(minX, minY, maxX, maxY float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
}

func TestQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	world := box(0, 0, 1000, 1000)
	q := New[int](world, WithMaxItems(4), WithMaxDepth(8))

	boxes := make([]orb.Bound, 0, 500)
	for i := 0; i < 500; i++ {
		x, y := rng.Float64()*980, rng.Float64()*980
		w, h := rng.Float64()*60, rng.Float64()*60
		b := box(x, y, x+w, y+h)
		boxes = append(boxes, b)
		q.Insert(i, b)
	}
	if q.Len() != len(boxes) {
		t.Fatalf("Len = %d, want %d", q.Len(), len(boxes))
	}

	for trial := 0; trial < 100; trial++ {
		x, y := rng.Float64()*900, rng.Float64()*900
		r := box(x, y, x+rng.Float64()*200, y+rng.Float64()*200)

		var want []int
		for i, b := range boxes {
			if b.Intersects(r) {
				want = append(want, i)
			}
		}
		got := q.Query(r)
		sort.Ints(got)
		if len(got) != len(want) {
			t.Fatalf("trial %d: got %d ids, want %d", trial, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("trial %d: got %v, want %v", trial, got, want)
			}
		}
	}
}

func TestQueryNoDuplicatesForSpanningBoxes(t *testing.T) {
	q := New[string](box(0, 0, 100, 100), WithMaxItems(1))
	// Each of these straddles the center, so none fits a child.
	q.Insert("a", box(40, 40, 60, 60))
	q.Insert("b", box(45, 0, 55, 100))
	q.Insert("c", box(0, 45, 100, 55))
	q.Insert("d", box(1, 1, 2, 2))

	got := q.Query(box(0, 0, 100, 100))
	seen := map[string]int{}
	for _, k := range got {
		seen[k]++
	}
	for _, k := range []string{"a", "b", "c", "d"} {
		if seen[k] != 1 {
			t.Fatalf("key %q returned %d times", k, seen[k])
		}
	}
}

func TestQueryOutsideRootBounds(t *testing.T) {
	q := New[int](box(0, 0, 10, 10))
	q.Insert(1, box(20, 20, 30, 30))
	q.Insert(2, box(-5, -5, 5, 5))

	if got := q.Query(box(25, 25, 26, 26)); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected overflow entry, got %v", got)
	}
	if got := q.Query(box(-1, -1, 0, 0)); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected straddling entry, got %v", got)
	}
}

func TestQueryFuncStopsEarly(t *testing.T) {
	q := New[int](box(0, 0, 100, 100), WithMaxItems(2))
	for i := 0; i < 20; i++ {
		f := float64(i * 5)
		q.Insert(i, box(f, f, f+1, f+1))
	}
	calls := 0
	q.QueryFunc(box(0, 0, 100, 100), func(int, orb.Bound) bool {
		calls++
		return calls < 3
	})
	if calls != 3 {
		t.Fatalf("fn called %d times, want 3", calls)
	}
}

func TestEmptyQuery(t *testing.T) {
	q := New[int](box(0, 0, 100, 100))
	q.Insert(1, box(10, 10, 20, 20))
	if got := q.Query(box(50, 50, 60, 60)); len(got) != 0 {
		t.Fatalf("expected nothing, got %v", got)
	}
}
