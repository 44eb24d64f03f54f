package ecs

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// store is the type-erased view of an ObjectPool the Manager works through.
type store interface {
	TypeID() TypeID
	Cap() int
	ValidCount() int
	InvalidCount() int
	Valid(h Handle) bool
	removeAndRelease(h Handle) error
	updateAll(dt float32)
	releaseAll()
}

// Entry is one (type, handle) association of an entity.
type Entry struct {
	Type   TypeID
	Handle Handle
}

// PoolStats describes one pool for diagnostics.
type PoolStats struct {
	Type     TypeID
	Name     string
	Valid    int
	Invalid  int
	Capacity int
}

// Manager owns one ObjectPool per component type and the per-entity index of
// attached components. It is an explicit context object: create one per
// scene and pass it to whoever needs it.
type Manager struct {
	cfg      PoolConfig
	pools    map[TypeID]store
	order    []TypeID
	byEntity map[EntityID][]Entry
	log      *zap.Logger
}

func NewManager(cfg PoolConfig, log *zap.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		pools:    make(map[TypeID]store, 16),
		byEntity: make(map[EntityID][]Entry, 256),
		log:      log,
	}
}

// Pool returns the pool for T, creating it on first use.
func Pool[T any](m *Manager) (*ObjectPool[T], error) {
	typ := TypeOf[T]()
	if s, ok := m.pools[typ]; ok {
		return s.(*ObjectPool[T]), nil
	}
	p, err := NewObjectPool[T](typ, m.cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s pool: %w", TypeName(typ), err)
	}
	m.pools[typ] = p
	m.order = append(m.order, typ)
	sort.Slice(m.order, func(i, j int) bool { return m.order[i] < m.order[j] })
	m.log.Debug("component pool created",
		zap.String("type", TypeName(typ)),
		zap.Int("capacity", p.Cap()))
	return p, nil
}

// Add attaches c to e. If e already has a T the old value is released and
// overwritten in place, and the existing handle is returned.
func Add[T any](m *Manager, e EntityID, c T) (Handle, error) {
	p, err := Pool[T](m)
	if err != nil {
		return Handle{}, err
	}
	typ := p.TypeID()
	if entry, ok := m.find(e, typ); ok {
		v, err := p.Get(entry.Handle)
		if err != nil {
			return Handle{}, err
		}
		if r, ok := any(v).(Releaser); ok {
			r.Release()
		}
		*v = c
		return entry.Handle, nil
	}
	h, err := p.Add(e, c)
	if err != nil {
		return Handle{}, fmt.Errorf("add %s: %w", TypeName(typ), err)
	}
	m.byEntity[e] = append(m.byEntity[e], Entry{Type: typ, Handle: h})
	return h, nil
}

// Get returns e's T, or ErrNotFound.
func Get[T any](m *Manager, e EntityID) (*T, error) {
	typ := TypeOf[T]()
	entry, ok := m.find(e, typ)
	if !ok {
		return nil, ErrNotFound
	}
	return m.pools[typ].(*ObjectPool[T]).Get(entry.Handle)
}

// Has reports whether e has a T attached.
func Has[T any](m *Manager, e EntityID) bool {
	return m.HasComponent(e, TypeOf[T]())
}

func (m *Manager) HasComponent(e EntityID, typ TypeID) bool {
	entry, ok := m.find(e, typ)
	return ok && m.pools[typ].Valid(entry.Handle)
}

// RemoveComponent detaches e's component of type typ. It returns false when
// there was nothing to remove.
func (m *Manager) RemoveComponent(e EntityID, typ TypeID) bool {
	entries := m.byEntity[e]
	for i, entry := range entries {
		if entry.Type != typ {
			continue
		}
		if err := m.pools[typ].removeAndRelease(entry.Handle); err != nil {
			m.log.Warn("stale component handle",
				zap.Uint64("entity", uint64(e)),
				zap.String("type", TypeName(typ)),
				zap.Error(err))
		}
		entries = append(entries[:i], entries[i+1:]...)
		if len(entries) == 0 {
			delete(m.byEntity, e)
		} else {
			m.byEntity[e] = entries
		}
		return true
	}
	return false
}

// RemoveAll detaches every component of e, newest first.
func (m *Manager) RemoveAll(e EntityID) {
	entries := m.byEntity[e]
	for i := len(entries) - 1; i >= 0; i-- {
		if err := m.pools[entries[i].Type].removeAndRelease(entries[i].Handle); err != nil {
			m.log.Warn("stale component handle", zap.Uint64("entity", uint64(e)), zap.Error(err))
		}
	}
	delete(m.byEntity, e)
}

// AllComponents lists e's components in attach order. The slice is a copy.
func (m *Manager) AllComponents(e EntityID) []Entry {
	entries := m.byEntity[e]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// UpdateAll calls Update on every component implementing Updater, one pool at
// a time in TypeID order. Updates must not attach or detach components.
func (m *Manager) UpdateAll(dt float32) {
	for _, typ := range m.order {
		m.pools[typ].updateAll(dt)
	}
}

func (m *Manager) Stats() []PoolStats {
	out := make([]PoolStats, 0, len(m.order))
	for _, typ := range m.order {
		s := m.pools[typ]
		out = append(out, PoolStats{
			Type:     typ,
			Name:     TypeName(typ),
			Valid:    s.ValidCount(),
			Invalid:  s.InvalidCount(),
			Capacity: s.Cap(),
		})
	}
	return out
}

// Close releases every remaining component and drops all pools.
func (m *Manager) Close() {
	for _, typ := range m.order {
		m.pools[typ].releaseAll()
	}
	m.pools = make(map[TypeID]store, 16)
	m.order = m.order[:0]
	m.byEntity = make(map[EntityID][]Entry, 256)
}

func (m *Manager) find(e EntityID, typ TypeID) (Entry, bool) {
	for _, entry := range m.byEntity[e] {
		if entry.Type == typ {
			return entry, true
		}
	}
	return Entry{}, false
}
