package deque

import (
	"fmt"
	"math"
)

// ref addresses a node inside the arena of its owning deque. Refs are 1-based so the zero value means "absent",
// which keeps the zero Deque usable without a constructor.
type ref int32

const (
	nilRef   ref = 0  // Absent link; also marks an empty head / tail.
	freedRef ref = -1 // Put in `prev` of slots that sit on the free list.

	maxArenaNodes = math.MaxInt32 // Refs are int32, so the arena can't address more nodes than this.
)

// node is a single storage cell in the chain, holding one element and the links to its neighbors.
// Links are arena refs rather than pointers; `prev` is never an ownership edge.
type node[V any] struct {
	value V
	prev  ref
	next  ref
}

// at returns the node stored under `r`. Callers must never pass nilRef or a freed ref.
func (d *Deque[V]) at(r ref) *node[V] {
	return &d.nodes[r-1]
}

// allocate stores `v` in a free slot (or a newly appended one) and returns its ref with both links absent.
// Nothing is linked here, so a failed allocation leaves the chain untouched.
func (d *Deque[V]) allocate(v V) (ref, error) {
	if d.free != nilRef { // Reuse the most recently released slot.
		r := d.free
		d.free = d.at(r).next
		*d.at(r) = node[V]{value: v}
		return r, nil
	}

	// The free list is empty, so every slot in the arena is linked into the chain.
	if limit := d.opts.nodeLimit(); len(d.nodes) >= limit {
		return nilRef, fmt.Errorf("%w: node budget of %d is exhausted", ErrAllocationFailed, limit)
	}
	d.nodes = append(d.nodes, node[V]{value: v})
	return ref(len(d.nodes)), nil
}

// release zeroes the slot under `r` and puts it on the free list. It is a no-op for nilRef.
// Neighbor links aren't touched; the caller unlinks the node first.
func (d *Deque[V]) release(r ref) {
	if r == nilRef {
		return
	}
	*d.at(r) = node[V]{prev: freedRef, next: d.free}
	d.free = r
}
