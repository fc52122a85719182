// Package arena provides a bulk-allocation region and typed object pools on
// top of it, used by the engine to keep ParserPath and context-snapshot
// churn off the Go heap's GC path during multi-path speculation.
//
// Handles are opaque google/uuid-backed values rather than raw indices, the
// same way the teacher exposes opaque ids for externally-visible resources
// in server/dao/sqlite.
package arena

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dekarrin/stepparser/internal/stepparse/stepperr"
)

// Handle identifies a single slot acquired from a Pool.
type Handle struct {
	id uuid.UUID
}

func (h Handle) String() string {
	return h.id.String()
}

func newHandle() Handle {
	return Handle{id: uuid.New()}
}

// Arena is a bulk-allocated region that owns a set of named, typed pools. It
// is a bookkeeping convenience: pools do not actually share a contiguous byte
// buffer (Go's GC makes true arena-of-bytes allocation impractical for
// arbitrary T), but they do share disposal lifecycle and aggregate stats
// through their owning Arena.
type Arena struct {
	mu       sync.Mutex
	name     string
	disposed bool
	pools    []disposer
}

type disposer interface {
	dispose()
	name() string
}

// New returns a new Arena with the given name, used only for diagnostics.
func New(name string) *Arena {
	return &Arena{name: name}
}

// Disposed returns whether Dispose has been called on a.
func (a *Arena) Disposed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disposed
}

// Dispose tears down every pool registered to this arena. Pool operations
// after Dispose fail with stepperr.PoolDisposed.
func (a *Arena) Dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	for _, p := range a.pools {
		p.dispose()
	}
	a.disposed = true
}

func (a *Arena) register(p disposer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pools = append(a.pools, p)
}

// Stats is the aggregate accounting of a single Pool.
type Stats struct {
	Name            string
	InUse           int
	Free            int
	InitialCapacity int
	MaxCapacity     int
}

// Factory produces zero-valued/reset instances of T for a Pool.
type Factory[T any] func() T

// Pool is a typed object pool. Acquire returns a slot already reset via the
// pool's Factory; Release returns a slot to the free list. Acquire/Release
// hold weak accounting references only — the Arena does not own T's memory,
// it owns the bookkeeping of which handles are live.
type Pool[T any] struct {
	arena   *Arena
	poolN   string
	factory Factory[T]

	mu              sync.Mutex
	initialCapacity int
	maxCapacity     int
	live            map[Handle]T
	freeHandles     []Handle
	disposed        bool
}

// NewPool returns a new Pool owned by a, with the given initial and maximum
// capacities. initialCapacity pre-acquires and immediately frees that many
// slots so the free list starts warm; maxCapacity of 0 means unbounded.
func NewPool[T any](a *Arena, name string, factory Factory[T], initialCapacity, maxCapacity int) *Pool[T] {
	p := &Pool[T]{
		arena:           a,
		poolN:           name,
		factory:         factory,
		initialCapacity: initialCapacity,
		maxCapacity:     maxCapacity,
		live:            make(map[Handle]T),
	}

	for i := 0; i < initialCapacity; i++ {
		h := newHandle()
		p.freeHandles = append(p.freeHandles, h)
	}

	if a != nil {
		a.register(p)
	}

	return p
}

func (p *Pool[T]) name() string { return p.poolN }

func (p *Pool[T]) dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disposed = true
	p.live = make(map[Handle]T)
	p.freeHandles = nil
}

// Acquire returns a handle to a freshly-reset T. If the pool has spare
// capacity from its free list it is reused; otherwise a new slot is created
// as long as doing so would not exceed MaxCapacity (0 = unbounded).
func (p *Pool[T]) Acquire() (Handle, T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T

	if p.disposed {
		return Handle{}, zero, stepperr.PoolDisposed(p.poolN)
	}

	var h Handle
	if n := len(p.freeHandles); n > 0 {
		h = p.freeHandles[n-1]
		p.freeHandles = p.freeHandles[:n-1]
	} else {
		if p.maxCapacity > 0 && len(p.live) >= p.maxCapacity {
			return Handle{}, zero, stepperr.PoolExhausted(p.poolN, p.maxCapacity)
		}
		h = newHandle()
	}

	v := p.factory()
	p.live[h] = v

	return h, v, nil
}

// Release returns handle to the pool's free list. Releasing an unknown or
// already-released handle fails with stepperr.InvalidHandle.
func (p *Pool[T]) Release(handle Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return stepperr.PoolDisposed(p.poolN)
	}

	if _, ok := p.live[handle]; !ok {
		return stepperr.InvalidHandle(handle.String())
	}

	delete(p.live, handle)
	p.freeHandles = append(p.freeHandles, handle)
	return nil
}

// Get returns the current value associated with handle and whether it is
// live.
func (p *Pool[T]) Get(handle Handle) (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.live[handle]
	return v, ok
}

// Set replaces the value associated with a live handle. It has no effect if
// handle is not currently live.
func (p *Pool[T]) Set(handle Handle, v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.live[handle]; ok {
		p.live[handle] = v
	}
}

// Stats returns the current accounting for the pool.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Name:            p.poolN,
		InUse:           len(p.live),
		Free:            len(p.freeHandles),
		InitialCapacity: p.initialCapacity,
		MaxCapacity:     p.maxCapacity,
	}
}

// InUse returns the current count of acquired-but-not-released handles.
func (p *Pool[T]) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}
