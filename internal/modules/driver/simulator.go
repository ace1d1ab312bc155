// README: Driver motion simulator moves a fake driver toward pickup and counts down the ETA.
package driver

import (
	"fmt"
	"math"
	"math/rand"

	"goride/internal/types"
)

const (
	// Decay is the fraction of the remaining distance covered per tick.
	Decay = 0.05
	// SpawnRadius bounds the random spawn offset, in degrees per axis.
	SpawnRadius = 0.01
)

// Simulator holds the state of one active ride. It is not safe for concurrent
// use; the ride machine serializes calls under its own lock.
type Simulator struct {
	position   types.Point
	target     types.Point
	etaSeconds int
}

// NewSimulator starts a driver at position heading to target, arriving in etaMinutes.
func NewSimulator(position, target types.Point, etaMinutes int) *Simulator {
	eta := etaMinutes * 60
	if eta < 0 {
		eta = 0
	}
	return &Simulator{position: position, target: target, etaSeconds: eta}
}

// SpawnNear places a driver uniformly within ±SpawnRadius of target on each axis.
func SpawnNear(target types.Point, rng *rand.Rand) types.Point {
	return target.Offset((rng.Float64()*2-1)*SpawnRadius, (rng.Float64()*2-1)*SpawnRadius)
}

// DecayToward moves pos one tick closer to target, independently per axis.
func DecayToward(pos, target types.Point) types.Point {
	return types.Point{
		Lat: pos.Lat + (target.Lat-pos.Lat)*Decay,
		Lng: pos.Lng + (target.Lng-pos.Lng)*Decay,
	}
}

// Step applies one tick. It reports true once the ETA has reached zero, after
// which the caller should stop ticking.
func (s *Simulator) Step() bool {
	if s.etaSeconds == 0 {
		return true
	}
	s.position = DecayToward(s.position, s.target)
	s.etaSeconds--
	return s.etaSeconds == 0
}

func (s *Simulator) Position() types.Point { return s.position }
func (s *Simulator) Target() types.Point   { return s.target }
func (s *Simulator) ETASeconds() int       { return s.etaSeconds }

// FormatETA renders a countdown for display, rounding up to whole minutes.
func FormatETA(seconds int) string {
	if seconds <= 0 {
		return "Arriving now"
	}
	return fmt.Sprintf("%d min", int(math.Ceil(float64(seconds)/60)))
}
