package render

// Handle indexes an item held by a Pool.
type Handle int

// DefaultPoolSize is the number of items a renderer preallocates.
const DefaultPoolSize = 50

// Pool recycles items through a free list of indexes. It never refuses an
// Acquire: when the free list is empty a new item is appended.
// A Pool is not safe for concurrent use.
type Pool[T any] struct {
	items  []T
	active []bool
	free   []Handle
	newFn  func() T
}

// NewPool preallocates initial items built by newFn.
func NewPool[T any](initial int, newFn func() T) *Pool[T] {
	p := &Pool[T]{newFn: newFn}
	for i := 0; i < initial; i++ {
		p.grow()
	}
	return p
}

func (p *Pool[T]) grow() Handle {
	h := Handle(len(p.items))
	p.items = append(p.items, p.newFn())
	p.active = append(p.active, false)
	p.free = append(p.free, h)
	return h
}

// Acquire hands out a free item, growing the pool if none is left.
func (p *Pool[T]) Acquire() (Handle, *T) {
	if len(p.free) == 0 {
		p.grow()
	}
	h := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.active[h] = true
	return h, &p.items[h]
}

// Release returns h to the free list. Releasing an idle or unknown handle
// is a no-op.
func (p *Pool[T]) Release(h Handle) {
	if h < 0 || int(h) >= len(p.items) || !p.active[h] {
		return
	}
	p.active[h] = false
	p.free = append(p.free, h)
}

// ReleaseAll marks every item idle.
func (p *Pool[T]) ReleaseAll() {
	for h, on := range p.active {
		if on {
			p.Release(Handle(h))
		}
	}
}

// Get returns the item behind h, or nil when h is not active.
func (p *Pool[T]) Get(h Handle) *T {
	if h < 0 || int(h) >= len(p.items) || !p.active[h] {
		return nil
	}
	return &p.items[h]
}

// Active is the number of handed-out items.
func (p *Pool[T]) Active() int { return len(p.items) - len(p.free) }

// Cap is the number of items ever created.
func (p *Pool[T]) Cap() int { return len(p.items) }
