package deque

import "iter"

// walk yields a pointer to every element, starting at `start` and following the links picked by `step`.
// The chain is frozen while walking: pushes fail and removals are refused.
func (d *Deque[V]) walk(start ref, step func(*node[V]) ref, yield func(*V) bool) {
	if d.IsEmpty() {
		return
	}
	d.traversals++
	defer func() { d.traversals-- }()

	for cur := start; cur != nilRef; {
		n := d.at(cur)
		if !yield(&n.value) {
			return
		}
		cur = step(n)
	}
}

func forward[V any](n *node[V]) ref  { return n.next }
func backward[V any](n *node[V]) ref { return n.prev }

// All returns a head to tail sequence of pointers to the stored elements. Elements may be read or overwritten
// in place through the pointers; they're only valid until the next mutating call.
func (d *Deque[V]) All() iter.Seq[*V] {
	return func(yield func(*V) bool) {
		d.walk(d.head, forward[V], yield)
	}
}

// Backward is All in tail to head order.
func (d *Deque[V]) Backward() iter.Seq[*V] {
	return func(yield func(*V) bool) {
		d.walk(d.tail, backward[V], yield)
	}
}

// Values returns a head to tail sequence of element copies.
func (d *Deque[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		d.walk(d.head, forward[V], func(v *V) bool { return yield(*v) })
	}
}

// Traverse calls `visit` once per element in head to tail order.
func (d *Deque[V]) Traverse(visit func(*V)) {
	if visit == nil {
		return
	}
	d.observe(opTraverse, 0)
	for v := range d.All() {
		visit(v)
	}
}
