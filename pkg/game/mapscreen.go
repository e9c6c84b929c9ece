package game

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/golangdaddy/citymap/pkg/drawmap"
	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
	"github.com/golangdaddy/citymap/pkg/render"
	"github.com/golangdaddy/citymap/pkg/traffic"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/paulmach/orb"
)

const (
	// panSpeed is in screen pixels per tick.
	panSpeed = 8.0
	// zoomStep is applied per wheel notch.
	zoomStep = 1.1
	// pickRadius pads the cursor when looking for hovered objects, in meters.
	pickRadius = 0.5
)

// toggleKeys switch whole kinds of object on and off.
var toggleKeys = []struct {
	key  ebiten.Key
	kind objects.Kind
}{
	{ebiten.Key1, objects.KindBuilding},
	{ebiten.Key2, objects.KindParcel},
	{ebiten.Key3, objects.KindArea},
	{ebiten.Key4, objects.KindExtraShape},
	{ebiten.Key5, objects.KindBusStop},
}

// laneCycle is the order L steps through. Sidewalks and parking are left alone.
var laneCycle = map[mapmodel.LaneType]mapmodel.LaneType{
	mapmodel.LaneDriving: mapmodel.LaneBiking,
	mapmodel.LaneBiking:  mapmodel.LaneBus,
	mapmodel.LaneBus:     mapmodel.LaneDriving,
}

// MapScreen draws the map with live traffic. It supports panning, zooming,
// hovering over objects and a few edits.
type MapScreen struct {
	m   *mapmodel.Map
	dm  *drawmap.DrawMap
	sim *traffic.Simulation
	cs  *render.ColorScheme
	p   *render.Prerender

	camera  Camera
	vis     *Visibility
	paused  bool
	hovered render.Renderable
	removed []mapmodel.Turn
	// laneEdits holds the original type of every lane changed so far.
	laneEdits   map[mapmodel.LaneID]mapmodel.LaneType
	sessionFile string

	dragging   bool
	dragMoved  bool
	lastCursor [2]int
}

// NewMapScreen frames the whole map. F5 and F9 save and load the session in
// sessionFile.
func NewMapScreen(m *mapmodel.Map, dm *drawmap.DrawMap, p *render.Prerender, cs *render.ColorScheme, sim *traffic.Simulation, sessionFile string) *MapScreen {
	return &MapScreen{
		m:           m,
		dm:          dm,
		sim:         sim,
		cs:          cs,
		p:           p,
		camera:      FitCamera(m.Bounds(), ScreenWidth, ScreenHeight),
		vis:         NewVisibility(),
		laneEdits:   make(map[mapmodel.LaneID]mapmodel.LaneType),
		sessionFile: sessionFile,
	}
}

// Update handles input, steps the simulation and finds the hovered object.
func (ms *MapScreen) Update() error {
	ms.handleCamera()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		ms.paused = !ms.paused
	}
	if !ms.paused || inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		ms.sim.Step()
	}

	for _, t := range toggleKeys {
		if inpututil.IsKeyJustPressed(t.key) {
			log.Printf("%v shown: %v", t.kind, ms.vis.Toggle(t.kind))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		ms.vis.ToggleAllIcons()
	}

	x, y := ebiten.CursorPosition()
	ms.hovered = ms.pick(ms.camera.ScreenToMap(float64(x), float64(y), ScreenWidth, ScreenHeight))

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && !ms.dragMoved {
		ms.click()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		ms.cycleLaneType()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		ms.removeHoveredTurn()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyU) {
		ms.restoreTurn()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		ms.saveSession()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		ms.loadSession()
	}
	return nil
}

func (ms *MapScreen) handleCamera() {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		ms.camera.Pan(-panSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		ms.camera.Pan(panSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		ms.camera.Pan(0, -panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		ms.camera.Pan(0, panSpeed)
	}

	x, y := ebiten.CursorPosition()
	if _, wheel := ebiten.Wheel(); wheel != 0 {
		factor := zoomStep
		if wheel < 0 {
			factor = 1 / zoomStep
		}
		ms.camera.ZoomAt(factor, float64(x), float64(y), ScreenWidth, ScreenHeight)
	}

	// Drag to pan. A press and release without movement is a click.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		ms.dragging, ms.dragMoved = true, false
		ms.lastCursor = [2]int{x, y}
	}
	if ms.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		dx, dy := x-ms.lastCursor[0], y-ms.lastCursor[1]
		if dx != 0 || dy != 0 {
			ms.camera.Pan(-float64(dx), -float64(dy))
			ms.dragMoved = true
		}
		ms.lastCursor = [2]int{x, y}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		ms.dragging = false
	}
}

// pick returns the top-most object under pt.
func (ms *MapScreen) pick(pt orb.Point) render.Renderable {
	var hit render.Renderable
	probe := orb.Bound{Min: pt, Max: pt}.Pad(pickRadius)
	ms.dm.HandleObjects(probe, ms.m, ms.sim, ms.vis, drawmap.FrontToBack, func(obj render.Renderable) bool {
		if obj.Contains(pt) {
			hit = obj
			return false
		}
		return true
	})
	return hit
}

// click on an intersection toggles its turn icons.
func (ms *MapScreen) click() {
	if ms.hovered == nil {
		return
	}
	if i, ok := ms.hovered.ID().AsIntersection(); ok {
		ms.vis.ToggleIconsAt(i)
	}
}

func (ms *MapScreen) cycleLaneType() {
	if ms.hovered == nil {
		return
	}
	id, ok := ms.hovered.ID().AsLane()
	if !ok {
		return
	}
	l := ms.m.GetL(id)
	next, ok := laneCycle[l.Type]
	if !ok {
		log.Printf("%s lanes can't be changed", l.Type)
		return
	}
	ms.setLaneType(id, next)
	log.Printf("lane %d is now %s", id, next)
}

// setLaneType edits the map and the lane drawable together.
func (ms *MapScreen) setLaneType(id mapmodel.LaneID, t mapmodel.LaneType) {
	if _, ok := ms.laneEdits[id]; !ok {
		ms.laneEdits[id] = ms.m.GetL(id).Type
	}
	ms.m.ChangeLaneType(id, t)
	ms.dm.EditLaneType(id, ms.m, ms.cs, ms.p)
}

func (ms *MapScreen) removeHoveredTurn() {
	if ms.hovered == nil {
		return
	}
	id, ok := ms.hovered.ID().AsTurn()
	if !ok {
		return
	}
	if ms.removeTurn(id) {
		ms.hovered = nil
		log.Printf("removed %v", id)
	}
}

// removeTurn takes a turn out of the map unless an agent is on it.
func (ms *MapScreen) removeTurn(id mapmodel.TurnID) bool {
	if ms.sim.Occupied(mapmodel.OnTurn(id)) {
		log.Printf("%v is in use, not removing it", id)
		return false
	}
	ms.removed = append(ms.removed, *ms.m.GetT(id))
	ms.m.RemoveTurn(id)
	ms.dm.EditRemoveTurn(id)
	return true
}

// restoreTurn puts back the most recently removed turn.
func (ms *MapScreen) restoreTurn() bool {
	if len(ms.removed) == 0 {
		return false
	}
	t := ms.removed[len(ms.removed)-1]
	ms.removed = ms.removed[:len(ms.removed)-1]
	ms.m.AddTurn(t)
	ms.dm.EditAddTurn(t.ID, ms.m)
	log.Printf("restored %v", t.ID)
	return true
}

// Draw renders everything on screen back to front, then the hovered object
// highlighted, then the HUD.
func (ms *MapScreen) Draw(screen *ebiten.Image) {
	screen.Fill(ms.cs.Get(render.ColorMapBackground))

	opts := render.NewDrawOptions(ms.camera.Zoom)
	opts.GeoM = ms.camera.GeoM(ScreenWidth, ScreenHeight)

	drawn := 0
	ms.dm.HandleObjects(ms.camera.ViewBounds(ScreenWidth, ScreenHeight), ms.m, ms.sim, ms.vis, drawmap.BackToFront, func(obj render.Renderable) bool {
		obj.Draw(screen, opts)
		drawn++
		return true
	})

	if ms.hovered != nil {
		highlight := *opts
		highlight.Override = ms.cs.Get(render.ColorSelected)
		ms.hovered.Draw(screen, &highlight)
	}

	lines := []string{
		fmt.Sprintf("tick %d  zoom %.2f  objects %d  %.0f fps", ms.sim.Tick(), ms.camera.Zoom, drawn, ebiten.ActualFPS()),
	}
	if ms.paused {
		lines[0] += "  PAUSED"
	}
	if ms.hovered != nil {
		lines = append(lines, ms.describe(ms.hovered))
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 10, 10+16*i)
	}
	ebitenutil.DebugPrintAt(screen, "drag/arrows: pan  wheel: zoom  space: pause  1-5: layers  t: icons  l: lane type  del/u: turns  f5/f9: save/load", 10, ScreenHeight-20)
}

// describe is the HUD line for the hovered object.
func (ms *MapScreen) describe(obj render.Renderable) string {
	id := obj.ID()
	switch id.Kind() {
	case objects.KindLane:
		l, _ := id.AsLane()
		lane := ms.m.GetL(l)
		return fmt.Sprintf("%s lane %d on %s", lane.Type, l, ms.m.GetR(lane.Parent).Name)
	case objects.KindIntersection:
		i, _ := id.AsIntersection()
		return fmt.Sprintf("intersection %d with %d turns (click for icons)", i, len(ms.m.GetI(i).Turns))
	case objects.KindBuilding:
		b, _ := id.AsBuilding()
		return fmt.Sprintf("building %d: %s", b, ms.dm.GetB(b).Address())
	case objects.KindExtraShape:
		es, _ := id.AsExtraShape()
		shape := ms.dm.GetES(es)
		attrs := make([]string, 0, len(shape.Attributes()))
		for k, v := range shape.Attributes() {
			attrs = append(attrs, k+"="+v)
		}
		sort.Strings(attrs)
		desc := fmt.Sprintf("extra shape %d %s", es, strings.Join(attrs, " "))
		if side, ok := shape.Road(); ok {
			desc += " near " + side.String()
		}
		return desc
	}
	return id.String()
}
