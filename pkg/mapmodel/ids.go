package mapmodel

import "fmt"

// LaneID indexes Map.AllLanes.
type LaneID int

// IntersectionID indexes Map.AllIntersections.
type IntersectionID int

// RoadID indexes Map.AllRoads.
type RoadID int

// BuildingID indexes Map.AllBuildings.
type BuildingID int

// ParcelID indexes Map.AllParcels.
type ParcelID int

// AreaID indexes Map.AllAreas.
type AreaID int

// TurnID identifies a movement from one lane to another through an intersection.
type TurnID struct {
	Parent IntersectionID
	Src    LaneID
	Dst    LaneID
}

func (t TurnID) String() string {
	return fmt.Sprintf("TurnID(%d, %d->%d)", t.Parent, t.Src, t.Dst)
}

// BusStopID is keyed by the sidewalk the stop sits on.
type BusStopID struct {
	Sidewalk LaneID
	Idx      int
}

func (b BusStopID) String() string {
	return fmt.Sprintf("BusStopID(%d, %d)", b.Sidewalk, b.Idx)
}

type traversableKind uint8

const (
	onLane traversableKind = iota
	onTurn
)

// Traversable is a piece of roadway that can host moving agents: a lane or a turn.
type Traversable struct {
	kind traversableKind
	lane LaneID
	turn TurnID
}

// OnLane returns the traversable for a lane.
func OnLane(id LaneID) Traversable {
	return Traversable{kind: onLane, lane: id}
}

// OnTurn returns the traversable for a turn.
func OnTurn(id TurnID) Traversable {
	return Traversable{kind: onTurn, turn: id}
}

// AsLane reports the lane, if this is one.
func (t Traversable) AsLane() (LaneID, bool) {
	return t.lane, t.kind == onLane
}

// AsTurn reports the turn, if this is one.
func (t Traversable) AsTurn() (TurnID, bool) {
	return t.turn, t.kind == onTurn
}

func (t Traversable) String() string {
	if t.kind == onTurn {
		return fmt.Sprintf("Turn(%v)", t.turn)
	}
	return fmt.Sprintf("Lane(%d)", t.lane)
}
