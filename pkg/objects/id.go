// Package objects names everything that can be drawn or picked on the map.
package objects

import (
	"fmt"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/sim"
)

// Kind is the category of an ID.
type Kind uint8

const (
	KindLane Kind = iota
	KindIntersection
	KindTurn
	KindBuilding
	KindParcel
	KindExtraShape
	KindBusStop
	KindArea
	KindCar
	KindPedestrian
	KindTrip
)

func (k Kind) String() string {
	switch k {
	case KindLane:
		return "Lane"
	case KindIntersection:
		return "Intersection"
	case KindTurn:
		return "Turn"
	case KindBuilding:
		return "Building"
	case KindParcel:
		return "Parcel"
	case KindExtraShape:
		return "ExtraShape"
	case KindBusStop:
		return "BusStop"
	case KindArea:
		return "Area"
	case KindCar:
		return "Car"
	case KindPedestrian:
		return "Pedestrian"
	case KindTrip:
		return "Trip"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText writes the kind's name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for c := KindLane; c <= KindTrip; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown object kind %q", b)
}

// Static reports whether objects of this kind live in the static map index.
// Turns are static but reached through their intersection, never the index.
func (k Kind) Static() bool {
	switch k {
	case KindLane, KindIntersection, KindBuilding, KindParcel, KindExtraShape, KindBusStop, KindArea:
		return true
	}
	return false
}

// ExtraShapeID indexes the extra shapes loaded alongside the map.
type ExtraShapeID int

// TripID identifies a planned trip of an agent.
type TripID int

// ID is a comparable reference to any drawable object. Only the field that
// matches Kind is meaningful.
type ID struct {
	kind Kind
	n    int
	turn mapmodel.TurnID
	stop mapmodel.BusStopID
}

// Lane wraps a lane id.
func Lane(id mapmodel.LaneID) ID { return ID{kind: KindLane, n: int(id)} }

// Intersection wraps an intersection id.
func Intersection(id mapmodel.IntersectionID) ID { return ID{kind: KindIntersection, n: int(id)} }

// Turn wraps a turn id.
func Turn(id mapmodel.TurnID) ID { return ID{kind: KindTurn, turn: id} }

// Building wraps a building id.
func Building(id mapmodel.BuildingID) ID { return ID{kind: KindBuilding, n: int(id)} }

// Parcel wraps a parcel id.
func Parcel(id mapmodel.ParcelID) ID { return ID{kind: KindParcel, n: int(id)} }

// ExtraShape wraps an extra shape id.
func ExtraShape(id ExtraShapeID) ID { return ID{kind: KindExtraShape, n: int(id)} }

// BusStop wraps a bus stop id.
func BusStop(id mapmodel.BusStopID) ID { return ID{kind: KindBusStop, stop: id} }

// Area wraps an area id.
func Area(id mapmodel.AreaID) ID { return ID{kind: KindArea, n: int(id)} }

// Car wraps a car id.
func Car(id sim.CarID) ID { return ID{kind: KindCar, n: int(id)} }

// Pedestrian wraps a pedestrian id.
func Pedestrian(id sim.PedestrianID) ID { return ID{kind: KindPedestrian, n: int(id)} }

// Trip wraps a trip id.
func Trip(id TripID) ID { return ID{kind: KindTrip, n: int(id)} }

// Kind returns the category.
func (id ID) Kind() Kind { return id.kind }

// AsLane returns the lane id if this is a lane.
func (id ID) AsLane() (mapmodel.LaneID, bool) {
	return mapmodel.LaneID(id.n), id.kind == KindLane
}

// AsIntersection returns the intersection id if this is an intersection.
func (id ID) AsIntersection() (mapmodel.IntersectionID, bool) {
	return mapmodel.IntersectionID(id.n), id.kind == KindIntersection
}

// AsTurn returns the turn id if this is a turn.
func (id ID) AsTurn() (mapmodel.TurnID, bool) {
	return id.turn, id.kind == KindTurn
}

// AsBuilding returns the building id if this is a building.
func (id ID) AsBuilding() (mapmodel.BuildingID, bool) {
	return mapmodel.BuildingID(id.n), id.kind == KindBuilding
}

// AsParcel returns the parcel id if this is a parcel.
func (id ID) AsParcel() (mapmodel.ParcelID, bool) {
	return mapmodel.ParcelID(id.n), id.kind == KindParcel
}

// AsExtraShape returns the extra shape id if this is one.
func (id ID) AsExtraShape() (ExtraShapeID, bool) {
	return ExtraShapeID(id.n), id.kind == KindExtraShape
}

// AsBusStop returns the bus stop id if this is a bus stop.
func (id ID) AsBusStop() (mapmodel.BusStopID, bool) {
	return id.stop, id.kind == KindBusStop
}

// AsArea returns the area id if this is an area.
func (id ID) AsArea() (mapmodel.AreaID, bool) {
	return mapmodel.AreaID(id.n), id.kind == KindArea
}

// AsCar returns the car id if this is a car.
func (id ID) AsCar() (sim.CarID, bool) {
	return sim.CarID(id.n), id.kind == KindCar
}

// AsPedestrian returns the pedestrian id if this is a pedestrian.
func (id ID) AsPedestrian() (sim.PedestrianID, bool) {
	return sim.PedestrianID(id.n), id.kind == KindPedestrian
}

func (id ID) String() string {
	switch id.kind {
	case KindTurn:
		return id.turn.String()
	case KindBusStop:
		return id.stop.String()
	}
	return fmt.Sprintf("%s(%d)", id.kind, id.n)
}
