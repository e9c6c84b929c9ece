package agentcache

import (
	"testing"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
)

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestTickScoping(t *testing.T) {
	segA := mapmodel.OnLane(1)
	segB := mapmodel.OnTurn(mapmodel.TurnID{Parent: 2, Src: 1, Dst: 3})
	c := New[mapmodel.Traversable, string]()

	if c.Has(5, segA) {
		t.Fatalf("empty cache reports an entry")
	}
	if _, ok := c.Tick(); ok {
		t.Fatalf("empty cache has a tick")
	}

	c.Put(5, segA, []string{"x"})
	if !c.Has(5, segA) {
		t.Fatalf("entry missing after Put")
	}
	if got := c.Get(segA); len(got) != 1 || got[0] != "x" {
		t.Fatalf("Get = %v", got)
	}
	if c.Has(6, segA) {
		t.Fatalf("entry served for a different tick")
	}

	c.Put(6, segB, []string{"y"})
	if c.Has(5, segA) || c.Has(6, segA) {
		t.Fatalf("tick 5 entry survived a new tick")
	}
	if !c.Has(6, segB) || c.Len() != 1 {
		t.Fatalf("tick 6 entry missing, len %d", c.Len())
	}
	if tick, ok := c.Tick(); !ok || tick != 6 {
		t.Fatalf("Tick = %d %v", tick, ok)
	}
}

func TestEmptyEntryCounts(t *testing.T) {
	c := New[mapmodel.Traversable, int]()
	seg := mapmodel.OnLane(4)
	c.Put(1, seg, nil)
	if !c.Has(1, seg) {
		t.Fatalf("an empty list is still an entry")
	}
	if got := c.Get(seg); len(got) != 0 {
		t.Fatalf("Get = %v", got)
	}
}

func TestDuplicatePutPanics(t *testing.T) {
	c := New[mapmodel.Traversable, int]()
	seg := mapmodel.OnLane(7)
	c.Put(3, seg, []int{1})
	mustPanic(t, "second Put", func() { c.Put(3, seg, []int{2}) })

	// After a tick change the same segment may be populated again.
	c.Put(4, seg, []int{3})
	if got := c.Get(seg); got[0] != 3 {
		t.Fatalf("Get = %v", got)
	}
}

func TestGetWithoutEntryPanics(t *testing.T) {
	c := New[mapmodel.Traversable, int]()
	mustPanic(t, "Get", func() { c.Get(mapmodel.OnLane(0)) })
}
