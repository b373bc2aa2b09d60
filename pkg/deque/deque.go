// This module implements a generic double-ended queue over a doubly linked chain of nodes.
// Nodes live in an arena owned by the deque and link to each other by arena refs instead of pointers; released
// slots go to a free list and are reused by later pushes. Callers only ever see elements, never nodes, so a
// visitor can overwrite an element in place but can't corrupt the chain.
//
// A Deque is not safe for concurrent use. Guard it with a single mutex held for the whole of each operation.

package deque

import (
	"errors"

	"github.com/nobletooth/deque/pkg/utils"
)

var (
	// ErrAllocationFailed is returned by pushes when no node could be allocated.
	ErrAllocationFailed = errors.New("failed to allocate a deque node")
	// ErrDestroyed is returned by pushes on a deque after Destroy.
	ErrDestroyed = errors.New("deque has been destroyed")
	// ErrMutationDuringTraversal is returned by pushes issued from inside a traversal.
	ErrMutationDuringTraversal = errors.New("deque can't be mutated during traversal")
)

// Deque is a double-ended queue of V. The zero value is an empty deque ready to use.
type Deque[V any] struct {
	nodes      []node[V] // Arena; node with ref r is stored at nodes[r-1].
	head       ref
	tail       ref
	free       ref // Top of the free list, chained through `next`.
	size       int
	traversals int // Number of running traversals; the chain is frozen while positive.
	destroyed  bool
	opts       options
}

// New creates an empty deque.
func New[V any](opts ...Option) *Deque[V] {
	d := new(Deque[V])
	for _, opt := range opts {
		opt(&d.opts)
	}
	return d
}

// IsEmpty returns true if the deque holds no elements.
func (d *Deque[V]) IsEmpty() bool {
	return d.head == nilRef
}

// Len returns the number of elements in the deque.
func (d *Deque[V]) Len() int {
	return d.size
}

// Front returns the first element, or false if the deque is empty.
func (d *Deque[V]) Front() (V, bool) {
	if d.IsEmpty() {
		return *new(V), false
	}
	return d.at(d.head).value, true
}

// Back returns the last element, or false if the deque is empty.
func (d *Deque[V]) Back() (V, bool) {
	if d.IsEmpty() {
		return *new(V), false
	}
	return d.at(d.tail).value, true
}

// checkPushable returns an error if the deque can't take new elements right now.
func (d *Deque[V]) checkPushable() error {
	if d.destroyed {
		return ErrDestroyed
	}
	if d.traversals > 0 {
		return ErrMutationDuringTraversal
	}
	return nil
}

// canUnlink reports whether nodes may be removed by `op`. Removing from inside a traversal is a bug in the caller.
func (d *Deque[V]) canUnlink(op string) bool {
	if d.destroyed {
		return false
	}
	if d.traversals > 0 {
		utils.RaiseInvariant("deque", "mutation_during_traversal",
			"Deque nodes were removed from inside a traversal.", "op", op, "traversals", d.traversals)
		return false
	}
	return true
}

// PushFront adds `v` to the front of the deque.
func (d *Deque[V]) PushFront(v V) error {
	if err := d.checkPushable(); err != nil {
		return err
	}
	r, err := d.allocate(v)
	if err != nil {
		return err
	}

	if d.IsEmpty() {
		d.tail = r
	} else {
		d.at(r).next = d.head
		d.at(d.head).prev = r
	}
	d.head = r
	d.size++
	d.observe(opPushFront, 1)
	return nil
}

// PushBack adds `v` to the back of the deque.
func (d *Deque[V]) PushBack(v V) error {
	if err := d.checkPushable(); err != nil {
		return err
	}
	r, err := d.allocate(v)
	if err != nil {
		return err
	}

	if d.IsEmpty() {
		d.head = r
	} else {
		d.at(r).prev = d.tail
		d.at(d.tail).next = r
	}
	d.tail = r
	d.size++
	d.observe(opPushBack, 1)
	return nil
}

// PopFront removes the first element and returns it. It's a no-op returning false on an empty deque.
func (d *Deque[V]) PopFront() (V, bool) {
	if !d.canUnlink(opPopFront) || d.IsEmpty() {
		return *new(V), false
	}

	oldHead := d.head
	n := d.at(oldHead)
	value := n.value
	if n.next == nilRef { // Single element; the deque becomes empty.
		d.head, d.tail = nilRef, nilRef
	} else {
		d.head = n.next
		d.at(d.head).prev = nilRef
	}
	d.release(oldHead)
	d.size--
	d.observe(opPopFront, -1)
	return value, true
}

// PopBack removes the last element and returns it. It's a no-op returning false on an empty deque.
func (d *Deque[V]) PopBack() (V, bool) {
	if !d.canUnlink(opPopBack) || d.IsEmpty() {
		return *new(V), false
	}

	oldTail := d.tail
	n := d.at(oldTail)
	value := n.value
	if n.prev == nilRef {
		d.head, d.tail = nilRef, nilRef
	} else {
		d.tail = n.prev
		d.at(d.tail).next = nilRef
	}
	d.release(oldTail)
	d.size--
	d.observe(opPopBack, -1)
	return value, true
}

// Clear removes every element. The deque stays usable and keeps its arena capacity for later pushes.
func (d *Deque[V]) Clear() {
	if !d.canUnlink(opClear) || d.IsEmpty() {
		return
	}
	removed := d.size
	d.releaseChain()
	d.observe(opClear, -removed)
}

// Destroy removes every element and releases the arena. Pushes fail with ErrDestroyed afterward,
// while pops and traversals behave as on an empty deque. Destroying twice is a no-op.
func (d *Deque[V]) Destroy() {
	if !d.canUnlink(opDestroy) {
		return
	}
	removed := d.size
	if !d.IsEmpty() {
		d.releaseChain()
	}
	d.nodes = nil
	d.destroyed = true
	d.observe(opDestroy, -removed)
}

// releaseChain walks the chain from head to tail zeroing every node, then resets the deque to empty.
// Slots on the free list are already zeroed, so the whole arena can be truncated afterward.
func (d *Deque[V]) releaseChain() {
	released := 0
	for cur := d.head; cur != nilRef; released++ {
		next := d.at(cur).next
		*d.at(cur) = node[V]{}
		cur = next
	}
	if released != d.size {
		utils.RaiseInvariant("deque", "chain_size_mismatch",
			"Released a different number of nodes than the deque size.", "released", released, "size", d.size)
	}

	d.nodes = d.nodes[:0]
	d.head, d.tail, d.free = nilRef, nilRef, nilRef
	d.size = 0
}
