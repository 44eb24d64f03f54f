package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("component not found")
	ErrTypeMismatch     = errors.New("handle belongs to another component type")
	ErrInvalidGrowth    = errors.New("pool growth increment must be positive")
	ErrInvalidCapacity  = errors.New("pool capacity must not be negative")
	ErrCapacityExceeded = errors.New("pool capacity exceeded")
)

// PoolConfig sizes an ObjectPool.
type PoolConfig struct {
	InitialCapacity int
	Growth          int
	MaxCapacity     int // 0 = unbounded
}

// Handle refers to one component inside a pool. It survives pool growth and
// goes stale once the component is removed.
type Handle struct {
	Type TypeID
	ref  uint64 // generation<<32 | slot
}

func newHandle(typ TypeID, slot, gen uint32) Handle {
	return Handle{Type: typ, ref: uint64(gen)<<32 | uint64(slot)}
}

func (h Handle) Slot() uint32       { return uint32(h.ref) }
func (h Handle) Generation() uint32 { return uint32(h.ref >> 32) }
func (h Handle) IsZero() bool       { return h.Type == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d/%d", h.Type, h.Slot(), h.Generation())
}

type slot struct {
	pos  int
	gen  uint32
	live bool
}

// ObjectPool is a contiguous store for one component type. Storage is split
// into an invalid region [0, invalid) and a valid region [invalid, cap).
// Adding takes the slot just below the boundary; when none is left the
// storage grows by the growth increment and the old contents are copied into
// the upper part of the new array.
type ObjectPool[T any] struct {
	typ     TypeID
	items   []T
	owners  []EntityID
	slotAt  []uint32 // storage position -> slot
	slots   []slot
	free    []uint32
	invalid int
	growth  int
	max     int
}

// NewObjectPool creates a pool with cfg.InitialCapacity invalid slots.
func NewObjectPool[T any](typ TypeID, cfg PoolConfig) (*ObjectPool[T], error) {
	if cfg.Growth <= 0 {
		return nil, ErrInvalidGrowth
	}
	if cfg.InitialCapacity < 0 || cfg.MaxCapacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if cfg.MaxCapacity > 0 && cfg.InitialCapacity > cfg.MaxCapacity {
		return nil, fmt.Errorf("initial capacity %d above max %d: %w",
			cfg.InitialCapacity, cfg.MaxCapacity, ErrInvalidCapacity)
	}
	n := cfg.InitialCapacity
	return &ObjectPool[T]{
		typ:     typ,
		items:   make([]T, n),
		owners:  make([]EntityID, n),
		slotAt:  make([]uint32, n),
		slots:   make([]slot, 0, n),
		invalid: n,
		growth:  cfg.Growth,
		max:     cfg.MaxCapacity,
	}, nil
}

func (p *ObjectPool[T]) TypeID() TypeID    { return p.typ }
func (p *ObjectPool[T]) Cap() int          { return len(p.items) }
func (p *ObjectPool[T]) ValidCount() int   { return len(p.items) - p.invalid }
func (p *ObjectPool[T]) InvalidCount() int { return p.invalid }

// Add stores v for owner and returns its handle.
func (p *ObjectPool[T]) Add(owner EntityID, v T) (Handle, error) {
	if p.invalid == 0 {
		if err := p.grow(); err != nil {
			return Handle{}, err
		}
	}
	p.invalid--
	pos := p.invalid

	var id uint32
	if n := len(p.free); n > 0 {
		id = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		id = uint32(len(p.slots))
		p.slots = append(p.slots, slot{})
	}
	s := &p.slots[id]
	s.pos = pos
	s.live = true

	p.items[pos] = v
	p.owners[pos] = owner
	p.slotAt[pos] = id
	return newHandle(p.typ, id, s.gen), nil
}

func (p *ObjectPool[T]) grow() error {
	old := len(p.items)
	next := old + p.growth
	if p.max > 0 && next > p.max {
		return fmt.Errorf("%s pool at %d: %w", TypeName(p.typ), old, ErrCapacityExceeded)
	}

	items := make([]T, next)
	copy(items[p.growth:], p.items)
	owners := make([]EntityID, next)
	copy(owners[p.growth:], p.owners)
	slotAt := make([]uint32, next)
	copy(slotAt[p.growth:], p.slotAt)

	p.items, p.owners, p.slotAt = items, owners, slotAt
	for i := range p.slots {
		if p.slots[i].live {
			p.slots[i].pos += p.growth
		}
	}
	p.invalid += p.growth
	return nil
}

func (p *ObjectPool[T]) lookup(h Handle) (int, error) {
	if h.Type != p.typ {
		if h.IsZero() {
			return 0, ErrNotFound
		}
		return 0, ErrTypeMismatch
	}
	id := h.Slot()
	if int(id) >= len(p.slots) {
		return 0, ErrNotFound
	}
	s := p.slots[id]
	if !s.live || s.gen != h.Generation() {
		return 0, ErrNotFound
	}
	return s.pos, nil
}

// Get returns a pointer to the stored value. The pointer is only valid until
// the next Add or Remove on this pool.
func (p *ObjectPool[T]) Get(h Handle) (*T, error) {
	pos, err := p.lookup(h)
	if err != nil {
		return nil, err
	}
	return &p.items[pos], nil
}

// Owner returns the entity the component was added for.
func (p *ObjectPool[T]) Owner(h Handle) (EntityID, bool) {
	pos, err := p.lookup(h)
	if err != nil {
		return 0, false
	}
	return p.owners[pos], true
}

func (p *ObjectPool[T]) Valid(h Handle) bool {
	_, err := p.lookup(h)
	return err == nil
}

// Remove frees the component. The lowest valid element moves into the hole
// so the valid region stays contiguous.
func (p *ObjectPool[T]) Remove(h Handle) error {
	pos, err := p.lookup(h)
	if err != nil {
		return err
	}
	boundary := p.invalid
	if pos != boundary {
		p.items[pos] = p.items[boundary]
		p.owners[pos] = p.owners[boundary]
		moved := p.slotAt[boundary]
		p.slotAt[pos] = moved
		p.slots[moved].pos = pos
	}
	var zero T
	p.items[boundary] = zero
	p.owners[boundary] = 0
	p.invalid++

	id := h.Slot()
	p.slots[id].live = false
	p.slots[id].gen++
	p.free = append(p.free, id)
	return nil
}

// Each visits every valid component in storage order. fn must not add to or
// remove from the pool.
func (p *ObjectPool[T]) Each(fn func(EntityID, Handle, *T)) {
	for pos := p.invalid; pos < len(p.items); pos++ {
		id := p.slotAt[pos]
		fn(p.owners[pos], newHandle(p.typ, id, p.slots[id].gen), &p.items[pos])
	}
}

// Updater is implemented by components that advance every frame.
type Updater interface {
	Update(dt float32)
}

// Releaser is implemented by components holding resources that must be
// freed when the component is detached.
type Releaser interface {
	Release()
}

func (p *ObjectPool[T]) removeAndRelease(h Handle) error {
	v, err := p.Get(h)
	if err != nil {
		return err
	}
	if r, ok := any(v).(Releaser); ok {
		r.Release()
	}
	return p.Remove(h)
}

func (p *ObjectPool[T]) updateAll(dt float32) {
	if _, ok := any((*T)(nil)).(Updater); !ok {
		return
	}
	for pos := p.invalid; pos < len(p.items); pos++ {
		any(&p.items[pos]).(Updater).Update(dt)
	}
}

func (p *ObjectPool[T]) releaseAll() {
	if _, ok := any((*T)(nil)).(Releaser); !ok {
		return
	}
	for pos := p.invalid; pos < len(p.items); pos++ {
		any(&p.items[pos]).(Releaser).Release()
	}
}
