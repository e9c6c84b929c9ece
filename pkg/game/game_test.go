package game

import (
	"math"
	"testing"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/paulmach/orb"
)

func near(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < 1e-9 && math.Abs(a[1]-b[1]) < 1e-9
}

func TestCameraRoundTrip(t *testing.T) {
	c := Camera{Center: orb.Point{250, 120}, Zoom: 3}
	g := c.GeoM(ScreenWidth, ScreenHeight)

	pt := orb.Point{260, 100}
	sx, sy := g.Apply(pt[0], pt[1])
	if back := c.ScreenToMap(sx, sy, ScreenWidth, ScreenHeight); !near(back, pt) {
		t.Fatalf("round trip %v -> (%v, %v) -> %v", pt, sx, sy, back)
	}

	cx, cy := g.Apply(c.Center[0], c.Center[1])
	if cx != ScreenWidth/2 || cy != ScreenHeight/2 {
		t.Fatalf("center lands at (%v, %v)", cx, cy)
	}

	view := c.ViewBounds(ScreenWidth, ScreenHeight)
	if w := view.Max[0] - view.Min[0]; math.Abs(w-ScreenWidth/3.0) > 1e-9 {
		t.Fatalf("view width %v", w)
	}
}

func TestCameraZoomKeepsCursorPoint(t *testing.T) {
	c := Camera{Center: orb.Point{100, 100}, Zoom: 2}
	before := c.ScreenToMap(100, 50, ScreenWidth, ScreenHeight)
	c.ZoomAt(1.5, 100, 50, ScreenWidth, ScreenHeight)
	if c.Zoom != 3 {
		t.Fatalf("zoom = %v", c.Zoom)
	}
	if after := c.ScreenToMap(100, 50, ScreenWidth, ScreenHeight); !near(before, after) {
		t.Fatalf("cursor point moved from %v to %v", before, after)
	}

	c.ZoomAt(1000, 0, 0, ScreenWidth, ScreenHeight)
	if c.Zoom != MaxZoom {
		t.Fatalf("zoom not clamped: %v", c.Zoom)
	}
}

func TestFitCamera(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2048, 300}}
	c := FitCamera(b, ScreenWidth, ScreenHeight)
	if c.Zoom != 0.5 || c.Center != (orb.Point{1024, 150}) {
		t.Fatalf("camera = %+v", c)
	}
	view := c.ViewBounds(ScreenWidth, ScreenHeight)
	if view.Min[0] > 0 || view.Max[0] < 2048 || view.Min[1] > 0 || view.Max[1] < 300 {
		t.Fatalf("view %v doesn't cover %v", view, b)
	}
}

func TestVisibility(t *testing.T) {
	v := NewVisibility()
	if !v.Show(objects.Building(0)) || v.ShowIconsFor(3) {
		t.Fatalf("bad defaults")
	}

	if v.Toggle(objects.KindBuilding) {
		t.Fatalf("first toggle should hide")
	}
	if v.Show(objects.Building(0)) || !v.Show(objects.Lane(0)) {
		t.Fatalf("toggle hid the wrong kind")
	}
	if !v.Toggle(objects.KindBuilding) || !v.Show(objects.Building(0)) {
		t.Fatalf("second toggle should show again")
	}

	v.ToggleIconsAt(3)
	if !v.ShowIconsFor(3) || v.ShowIconsFor(mapmodel.IntersectionID(4)) {
		t.Fatalf("icons at one intersection")
	}
	v.ToggleIconsAt(3)
	v.ToggleAllIcons()
	if !v.ShowIconsFor(4) {
		t.Fatalf("icons everywhere")
	}
}
