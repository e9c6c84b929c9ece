// Package sim is the narrow view of a running simulation that the renderer
// needs: the current tick and the agents occupying a piece of roadway.
package sim

import (
	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/paulmach/orb"
)

// Tick is simulation time. Ticks are totally ordered.
type Tick uint64

// Next returns the following tick.
func (t Tick) Next() Tick { return t + 1 }

// CarID identifies a vehicle.
type CarID int

// PedestrianID identifies a pedestrian.
type PedestrianID int

// DrawCarInput is everything needed to draw one vehicle.
type DrawCarInput struct {
	ID     CarID
	Front  orb.Point
	Angle  mapmodel.Angle
	Length float64
	Width  float64
	On     mapmodel.Traversable
	// Waiting is true when the vehicle is stopped in a queue.
	Waiting bool
}

// DrawPedestrianInput is everything needed to draw one pedestrian.
type DrawPedestrianInput struct {
	ID      PedestrianID
	Pos     orb.Point
	Waiting bool
	On      mapmodel.Traversable
}

// GetDrawAgents answers which agents are on a lane or turn right now.
type GetDrawAgents interface {
	Tick() Tick
	GetDrawCars(on mapmodel.Traversable, m *mapmodel.Map) []DrawCarInput
	GetDrawPeds(on mapmodel.Traversable, m *mapmodel.Map) []DrawPedestrianInput
}
