package mapmodel

import "github.com/paulmach/orb"

// LaneType decides what can travel on a lane.
type LaneType uint8

const (
	LaneDriving LaneType = iota
	LaneParking
	LaneSidewalk
	LaneBiking
	LaneBus
)

func (t LaneType) String() string {
	switch t {
	case LaneDriving:
		return "driving"
	case LaneParking:
		return "parking"
	case LaneSidewalk:
		return "sidewalk"
	case LaneBiking:
		return "biking"
	case LaneBus:
		return "bus"
	}
	return "unknown"
}

// Road is the centerline that lanes are derived from.
type Road struct {
	ID         RoadID
	Name       string
	CenterPts  orb.LineString
	Layer      int
	Lanes      []LaneID
	SrcI, DstI IntersectionID
}

// Lane is one strip of a road. Its center runs from SrcI to DstI.
type Lane struct {
	ID     LaneID
	Parent RoadID
	Type   LaneType
	Center orb.LineString
	SrcI   IntersectionID
	DstI   IntersectionID
	// BusStops on this lane, only populated for sidewalks.
	BusStops []BusStopID
}

// Length of the lane's center line.
func (l *Lane) Length() float64 {
	return Length(l.Center)
}

// EndpointAt returns the lane end touching intersection i, plus the heading
// pointing into that intersection.
func (l *Lane) EndpointAt(i IntersectionID) (orb.Point, Angle) {
	if i == l.SrcI && i != l.DstI {
		return l.Center[0], FirstAngle(l.Center).Opposite()
	}
	return l.Center[len(l.Center)-1], LastAngle(l.Center)
}

// IsSidewalk reports whether pedestrians use this lane.
func (l *Lane) IsSidewalk() bool {
	return l.Type == LaneSidewalk
}

// TurnType classifies a movement for display.
type TurnType uint8

const (
	TurnStraight TurnType = iota
	TurnLeft
	TurnRight
	TurnCrosswalk
	TurnSharedSidewalkCorner
)

// Turn is a movement between two lanes through an intersection.
type Turn struct {
	ID   TurnID
	Type TurnType
	Geom orb.LineString
}

// Angle is the heading from the start to the end of the turn.
func (t *Turn) Angle() Angle {
	return AngleBetween(t.Geom[0], t.Geom[len(t.Geom)-1])
}

// Length of the turn geometry.
func (t *Turn) Length() float64 {
	return Length(t.Geom)
}

// Intersection joins roads; Turns lists every movement through it.
type Intersection struct {
	ID      IntersectionID
	Center  orb.Point
	Polygon orb.Ring
	Layer   int
	Roads   []RoadID
	Turns   []TurnID
}

// Building is a footprint with a path to the nearest sidewalk.
type Building struct {
	ID        BuildingID
	Points    orb.Ring
	Address   string
	FrontPath orb.LineString
	Layer     int
}

// Parcel is a piece of land grouped into a block.
type Parcel struct {
	ID     ParcelID
	Points orb.Ring
	Block  int
	Layer  int
}

// BusStop sits along a sidewalk next to a driving lane.
type BusStop struct {
	ID          BusStopID
	DrivingLane LaneID
	DistAlong   float64
	SidewalkPos orb.Point
	DrivingPos  orb.Point
}

// AreaType picks the fill for an area.
type AreaType uint8

const (
	AreaPark AreaType = iota
	AreaWater
	AreaSwamp
)

// Area is a large polygon drawn beneath everything else.
type Area struct {
	ID     AreaID
	Type   AreaType
	Points orb.Ring
	Layer  int
}
