package event

import "github.com/google/uuid"

// Wrapper binds a payload-less callback to a subscription so it can sit in a
// channel next to payload-aware handlers. A wrapper is either active (bound)
// or idle (owned by its pool, unbound).
type Wrapper[F any] struct {
	id    uuid.UUID
	fn    F
	bound bool
}

// ID returns the subscription the wrapper is bound to, or uuid.Nil when idle.
func (w *Wrapper[F]) ID() uuid.UUID {
	return w.id
}

// Func returns the bound callback. ok is false for an idle wrapper.
func (w *Wrapper[F]) Func() (fn F, ok bool) {
	return w.fn, w.bound
}

// PoolStats describes the wrapper population of a pool.
type PoolStats struct {
	// Active is the number of wrappers bound to a live subscription.
	Active int

	// Idle is the number of released wrappers waiting for reuse.
	Idle int

	// Allocated is the number of wrappers ever created by the pool.
	// It equals the historical peak of Active.
	Allocated int
}

// WrapperPool recycles wrappers for bare callbacks.
// Active wrappers are referenced by exactly one channel record; idle
// wrappers only by the pool.
type WrapperPool[F any] struct {
	active    []*Wrapper[F]
	idle      []*Wrapper[F]
	allocated int
}

// Acquire binds fn to id, reusing the most recently released wrapper when
// one is idle.
func (p *WrapperPool[F]) Acquire(id uuid.UUID, fn F) *Wrapper[F] {
	var w *Wrapper[F]
	if n := len(p.idle); n > 0 {
		w = p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
	} else {
		w = &Wrapper[F]{}
		p.allocated++
	}
	w.id, w.fn, w.bound = id, fn, true
	p.active = append(p.active, w)
	return w
}

// Release unbinds the active wrapper for id and returns it to the idle set.
// It reports whether such a wrapper was found.
func (p *WrapperPool[F]) Release(id uuid.UUID) bool {
	for i, w := range p.active {
		if w.id != id {
			continue
		}
		p.active = append(p.active[:i], p.active[i+1:]...)
		p.park(w)
		return true
	}
	return false
}

// ReleaseAll returns every active wrapper to the idle set.
func (p *WrapperPool[F]) ReleaseAll() {
	for _, w := range p.active {
		p.park(w)
	}
	clear(p.active)
	p.active = p.active[:0]
}

func (p *WrapperPool[F]) park(w *Wrapper[F]) {
	var zero F
	w.id, w.fn, w.bound = uuid.Nil, zero, false
	p.idle = append(p.idle, w)
}

// Stats returns the current wrapper counts.
func (p *WrapperPool[F]) Stats() PoolStats {
	return PoolStats{
		Active:    len(p.active),
		Idle:      len(p.idle),
		Allocated: p.allocated,
	}
}
