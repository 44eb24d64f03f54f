package event

import "github.com/emberforge/ember/internal/core/ecs"

// Collision is emitted once per overlapping pair per frame.
type Collision struct {
	A, B ecs.EntityID
	// Box is true when the oriented boxes overlap, false for a sphere-only hit.
	Box bool
}

type EntityDestroyed struct {
	EntityID ecs.EntityID
	Name     string
}

type ComponentRemoved struct {
	EntityID ecs.EntityID
	Type     ecs.TypeID
}
