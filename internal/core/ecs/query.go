package ecs

// Each2 visits entities that have both an A and a B. It walks the A pool and
// looks B up through the entity index.
func Each2[A, B any](m *Manager, fn func(EntityID, *A, *B)) {
	typA, typB := TypeOf[A](), TypeOf[B]()
	sa, ok := m.pools[typA]
	if !ok {
		return
	}
	sb, ok := m.pools[typB]
	if !ok {
		return
	}
	pa := sa.(*ObjectPool[A])
	pb := sb.(*ObjectPool[B])
	pa.Each(func(e EntityID, _ Handle, a *A) {
		entry, ok := m.find(e, typB)
		if !ok {
			return
		}
		if b, err := pb.Get(entry.Handle); err == nil {
			fn(e, a, b)
		}
	})
}

// Each visits every T in the manager.
func Each[T any](m *Manager, fn func(EntityID, *T)) {
	s, ok := m.pools[TypeOf[T]()]
	if !ok {
		return
	}
	s.(*ObjectPool[T]).Each(func(e EntityID, _ Handle, v *T) { fn(e, v) })
}
