package physics

import (
	"fmt"

	"github.com/emberforge/ember/internal/core/ecs"
)

// SteerMode selects the behaviour driving a body each frame.
type SteerMode int

const (
	SteerNone SteerMode = iota
	SteerHoming
	SteerSwarm
	SteerShoot
)

var steerNames = map[string]SteerMode{
	"":       SteerNone,
	"none":   SteerNone,
	"homing": SteerHoming,
	"swarm":  SteerSwarm,
	"shoot":  SteerShoot,
}

func ParseSteerMode(s string) (SteerMode, error) {
	m, ok := steerNames[s]
	if !ok {
		return SteerNone, fmt.Errorf("unknown steering mode %q", s)
	}
	return m, nil
}

func (m SteerMode) String() string {
	switch m {
	case SteerHoming:
		return "homing"
	case SteerSwarm:
		return "swarm"
	case SteerShoot:
		return "shoot"
	}
	return "none"
}

// Steering pairs with a RigidBody on the same entity and names what it chases.
type Steering struct {
	Mode   SteerMode
	Target ecs.EntityID
	Speed  float32
	Swarm  SwarmParams
}
