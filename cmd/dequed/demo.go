package main

import (
	"fmt"
	"io"

	"github.com/nobletooth/deque/pkg/deque"
	"github.com/nobletooth/deque/pkg/printer"
)

// runDemo builds an int deque and a float deque, prints both, then clears the float deque, pops it while empty
// and pushes to it again.
func runDemo(w io.Writer) error {
	ints := deque.New[int32]()
	defer ints.Destroy()
	floats := deque.New[float32]()
	defer floats.Destroy()

	for _, v := range []int32{1, 2, 3} {
		if err := ints.PushBack(v); err != nil {
			return fmt.Errorf("failed to push %d: %w", v, err)
		}
	}
	for _, v := range []float32{1.123, 1.223, 1.3123} {
		if err := floats.PushBack(v); err != nil {
			return fmt.Errorf("failed to push %f: %w", v, err)
		}
	}
	const pi float32 = 3.14
	if err := floats.PushFront(pi); err != nil {
		return fmt.Errorf("failed to push %f: %w", pi, err)
	}

	p := printer.New(w)
	ints.Traverse(printer.Int[int32](p))
	p.Newline()
	floats.Traverse(printer.Float32(p))
	p.Newline()

	floats.Clear()
	floats.PopFront()
	floats.PopBack()
	if err := floats.PushFront(pi); err != nil {
		return fmt.Errorf("failed to push %f: %w", pi, err)
	}
	floats.Traverse(printer.Float32(p))
	p.Newline()

	return p.Err()
}
