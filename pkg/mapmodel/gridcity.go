package mapmodel

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// GridConfig describes a procedurally generated Manhattan-style city.
type GridConfig struct {
	Rows, Cols        int     // intersections in each direction
	BlockSize         float64 // distance between intersection centers
	BuildingsPerSide  int     // buildings per block side; 0 leaves blocks empty
	ParkEvery         int     // every Nth block becomes a park; 0 disables parks
	BusStopEvery      int     // every Nth horizontal road gets a bus stop; 0 disables
	OriginLon         float64 // north-west corner
	OriginLat         float64
	Name              string
	SkipSidewalkTurns bool
}

// DefaultGridConfig is a small downtown.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Rows:             6,
		Cols:             6,
		BlockSize:        100,
		BuildingsPerSide: 2,
		ParkEvery:        7,
		BusStopEvery:     2,
		OriginLon:        -122.3421,
		OriginLat:        47.6205,
		Name:             "grid",
	}
}

const metersPerDegreeLat = 111320.0

// NewGridCity builds a deterministic grid map. Every road gets a driving lane
// and a sidewalk in each direction.
func NewGridCity(cfg GridConfig) *Map {
	if cfg.Rows < 2 {
		cfg.Rows = 2
	}
	if cfg.Cols < 2 {
		cfg.Cols = 2
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 100
	}
	if cfg.Name == "" {
		cfg.Name = "grid"
	}

	margin := cfg.BlockSize / 2
	width := float64(cfg.Cols-1)*cfg.BlockSize + 2*margin
	height := float64(cfg.Rows-1)*cfg.BlockSize + 2*margin
	lonSpan := width / (metersPerDegreeLat * math.Cos(cfg.OriginLat*math.Pi/180))
	latSpan := height / metersPerDegreeLat
	gps := NewGPSBounds(cfg.OriginLon, cfg.OriginLat-latSpan, cfg.OriginLon+lonSpan, cfg.OriginLat)

	m := NewMap(cfg.Name, gps)
	halfRoad := 2 * LaneThickness

	center := func(r, c int) orb.Point {
		return orb.Point{margin + float64(c)*cfg.BlockSize, margin + float64(r)*cfg.BlockSize}
	}
	grid := make([][]IntersectionID, cfg.Rows)
	for r := 0; r < cfg.Rows; r++ {
		grid[r] = make([]IntersectionID, cfg.Cols)
		for c := 0; c < cfg.Cols; c++ {
			pt := center(r, c)
			grid[r][c] = m.AddIntersection(Intersection{
				Center:  pt,
				Polygon: RectRing(pt[0]-halfRoad, pt[1]-halfRoad, pt[0]+halfRoad, pt[1]+halfRoad),
			})
		}
	}

	busRoad := 0
	addRoad := func(name string, from, to IntersectionID, horizontal bool) {
		a, b := m.GetI(from).Center, m.GetI(to).Center
		dir := AngleBetween(a, b)
		centerPts := orb.LineString{Project(a, dir, halfRoad), Project(b, dir.Opposite(), halfRoad)}
		rid := m.AddRoad(Road{Name: name, CenterPts: centerPts, SrcI: from, DstI: to})
		back := Reversed(centerPts)

		fwd := m.AddLane(Lane{Parent: rid, Type: LaneDriving, Center: ShiftRight(centerPts, LaneThickness/2), SrcI: from, DstI: to})
		m.AddLane(Lane{Parent: rid, Type: LaneDriving, Center: ShiftRight(back, LaneThickness/2), SrcI: to, DstI: from})
		sidewalk := m.AddLane(Lane{Parent: rid, Type: LaneSidewalk, Center: ShiftRight(centerPts, 1.5*LaneThickness), SrcI: from, DstI: to})
		m.AddLane(Lane{Parent: rid, Type: LaneSidewalk, Center: ShiftRight(back, 1.5*LaneThickness), SrcI: to, DstI: from})

		if horizontal && cfg.BusStopEvery > 0 {
			if busRoad%cfg.BusStopEvery == 0 {
				sw := m.GetL(sidewalk)
				drive := m.GetL(fwd)
				dist := sw.Length() / 2
				swPos, _ := DistAlong(sw.Center, dist)
				drivePos, _ := DistAlong(drive.Center, dist)
				m.AddBusStop(BusStop{
					ID:          BusStopID{Sidewalk: sidewalk},
					DrivingLane: fwd,
					DistAlong:   dist,
					SidewalkPos: swPos,
					DrivingPos:  drivePos,
				})
			}
			busRoad++
		}
	}

	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c+1 < cfg.Cols; c++ {
			addRoad(fmt.Sprintf("%s Street", ordinal(r+1)), grid[r][c], grid[r][c+1], true)
		}
	}
	for c := 0; c < cfg.Cols; c++ {
		for r := 0; r+1 < cfg.Rows; r++ {
			addRoad(fmt.Sprintf("%s Avenue", ordinal(c+1)), grid[r][c], grid[r+1][c], false)
		}
	}
	for _, r := range m.roads {
		m.GetI(r.SrcI).Roads = append(m.GetI(r.SrcI).Roads, r.ID)
		m.GetI(r.DstI).Roads = append(m.GetI(r.DstI).Roads, r.ID)
	}

	for _, i := range m.intersections {
		addTurns(m, i.ID, !cfg.SkipSidewalkTurns)
	}

	addBlocks(m, cfg, center, halfRoad)
	m.Finalize()
	return m
}

func addTurns(m *Map, id IntersectionID, sidewalks bool) {
	var incoming, outgoing, walks []*Lane
	for _, rid := range m.GetI(id).Roads {
		for _, lid := range m.GetR(rid).Lanes {
			l := m.GetL(lid)
			switch {
			case l.Type == LaneSidewalk:
				walks = append(walks, l)
			case l.DstI == id:
				incoming = append(incoming, l)
			case l.SrcI == id:
				outgoing = append(outgoing, l)
			}
		}
	}

	for _, src := range incoming {
		for _, dst := range outgoing {
			if src.Parent == dst.Parent {
				continue
			}
			geom := orb.LineString{src.Center[len(src.Center)-1], dst.Center[0]}
			m.AddTurn(Turn{
				ID:   TurnID{Parent: id, Src: src.ID, Dst: dst.ID},
				Type: classifyTurn(LastAngle(src.Center), FirstAngle(dst.Center)),
				Geom: geom,
			})
		}
	}

	if !sidewalks {
		return
	}
	for _, src := range walks {
		for _, dst := range walks {
			if src.ID == dst.ID {
				continue
			}
			from, _ := src.EndpointAt(id)
			to, _ := dst.EndpointAt(id)
			tt := TurnSharedSidewalkCorner
			if src.Parent == dst.Parent {
				tt = TurnCrosswalk
			}
			m.AddTurn(Turn{
				ID:   TurnID{Parent: id, Src: src.ID, Dst: dst.ID},
				Type: tt,
				Geom: orb.LineString{from, to},
			})
		}
	}
}

func classifyTurn(in, out Angle) TurnType {
	diff := math.Mod(out.Degrees()-in.Degrees()+540, 360) - 180
	switch {
	case math.Abs(diff) < 30:
		return TurnStraight
	case diff > 0:
		return TurnRight
	default:
		return TurnLeft
	}
}

func addBlocks(m *Map, cfg GridConfig, center func(r, c int) orb.Point, halfRoad float64) {
	inset := halfRoad + 1
	block := 0
	for r := 0; r+1 < cfg.Rows; r++ {
		for c := 0; c+1 < cfg.Cols; c++ {
			tl, br := center(r, c), center(r+1, c+1)
			minX, minY := tl[0]+inset, tl[1]+inset
			maxX, maxY := br[0]-inset, br[1]-inset
			ring := RectRing(minX, minY, maxX, maxY)

			if cfg.ParkEvery > 0 && block%cfg.ParkEvery == cfg.ParkEvery-1 {
				m.AddArea(Area{Type: AreaPark, Points: ring})
				block++
				continue
			}
			m.AddParcel(Parcel{Points: ring, Block: block})
			addBuildings(m, cfg, block, minX, minY, maxX, maxY)
			block++
		}
	}
}

func addBuildings(m *Map, cfg GridConfig, block int, minX, minY, maxX, maxY float64) {
	n := cfg.BuildingsPerSide
	if n <= 0 {
		return
	}
	const gap = 4.0
	w := (maxX - minX - gap*float64(n+1)) / float64(n)
	h := (maxY - minY - gap*float64(n+1)) / float64(n)
	if w <= 0 || h <= 0 {
		return
	}
	num := 1
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			x0 := minX + gap + float64(col)*(w+gap)
			y0 := minY + gap + float64(row)*(h+gap)
			pts := RectRing(x0, y0, x0+w, y0+h)
			// Front paths lead to the nearer of the top or bottom block edge.
			mid := x0 + w/2
			front := orb.LineString{{mid, y0}, {mid, minY}}
			if row >= n/2 && n > 1 {
				front = orb.LineString{{mid, y0 + h}, {mid, maxY}}
			}
			m.AddBuilding(Building{
				Points:    pts,
				Address:   fmt.Sprintf("%d Block %d", num, block),
				FrontPath: front,
			})
			num++
		}
	}
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
