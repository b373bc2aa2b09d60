package deque

import (
	"math/rand/v2"
	"slices"
	"testing"

	refdeque "github.com/gammazero/deque"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modelValues lists the reference deque from front to back.
func modelValues[V any](model *refdeque.Deque[V]) []V {
	var values []V
	for i := range model.Len() {
		values = append(values, model.At(i))
	}
	return values
}

// TestDeque_AgainstModel replays random operation sequences on both Deque and a reference deque implementation,
// checking the chain invariants after every operation.
func TestDeque_AgainstModel(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42, 1337} {
		t.Run("", func(t *testing.T) {
			rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			d := New[int]()
			model := new(refdeque.Deque[int])

			for step := range 2_000 {
				switch op := rnd.IntN(100); {
				case op < 30:
					require.NoError(t, d.PushBack(step))
					model.PushBack(step)
				case op < 60:
					require.NoError(t, d.PushFront(step))
					model.PushFront(step)
				case op < 78:
					got, ok := d.PopFront()
					assert.Equal(t, model.Len() > 0, ok, "step %d", step)
					if model.Len() > 0 {
						assert.Equal(t, model.PopFront(), got, "step %d", step)
					}
				case op < 96:
					got, ok := d.PopBack()
					assert.Equal(t, model.Len() > 0, ok, "step %d", step)
					if model.Len() > 0 {
						assert.Equal(t, model.PopBack(), got, "step %d", step)
					}
				case op < 98:
					d.Clear()
					model.Clear()
				default:
					for v := range d.All() {
						*v++
					}
					for i := range model.Len() {
						model.Set(i, model.At(i)+1)
					}
				}

				assertLinks(t, d)
				require.Equal(t, model.Len(), d.Len(), "step %d", step)
				if model.Len() > 0 {
					front, _ := d.Front()
					back, _ := d.Back()
					assert.Equal(t, model.Front(), front, "step %d", step)
					assert.Equal(t, model.Back(), back, "step %d", step)
				}
			}

			expected := modelValues(model)
			assert.Equal(t, expected, slices.Collect(d.Values()))
			slices.Reverse(expected)
			var backward []int
			for v := range d.Backward() {
				backward = append(backward, *v)
			}
			assert.Equal(t, expected, backward)
		})
	}
}
