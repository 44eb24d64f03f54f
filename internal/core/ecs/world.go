package ecs

import "go.uber.org/zap"

// World ties entity allocation to component storage. Destruction is deferred:
// MarkForDestruction queues an entity and FlushDestroyQueue, run by the
// cleanup system at the end of the frame, detaches its components and
// retires the id.
type World struct {
	pool         *EntityPool
	components   *Manager
	destroyQueue []EntityID
	onDestroy    []func(EntityID)
}

func NewWorld(cfg PoolConfig, log *zap.Logger) *World {
	return &World{
		pool:         NewEntityPool(),
		components:   NewManager(cfg, log),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Entities() *EntityPool { return w.pool }
func (w *World) Components() *Manager  { return w.components }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// OnDestroy registers fn to run for each entity as it is flushed.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending reports whether id is queued for destruction.
func (w *World) Pending(id EntityID) bool {
	for _, q := range w.destroyQueue {
		if q == id {
			return true
		}
	}
	return false
}

// FlushDestroyQueue destroys all queued entities and returns how many died.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		if !w.pool.Alive(id) {
			continue
		}
		for _, fn := range w.onDestroy {
			fn(id)
		}
		w.components.RemoveAll(id)
		w.pool.Destroy(id)
		n++
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
