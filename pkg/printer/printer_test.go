package printer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nobletooth/deque/pkg/deque"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_Visitors(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		var out bytes.Buffer
		d := deque.New[int32]()
		for _, v := range []int32{1, -2, 3} {
			require.NoError(t, d.PushBack(v))
		}
		p := New(&out)
		d.Traverse(Int[int32](p))
		p.Newline()
		assert.NoError(t, p.Err())
		assert.Equal(t, "1\t-2\t3\t\n", out.String())
	})

	t.Run("bool", func(t *testing.T) {
		var out bytes.Buffer
		d := deque.New[bool]()
		require.NoError(t, d.PushBack(true))
		require.NoError(t, d.PushBack(false))
		d.Traverse(Bool(New(&out)))
		assert.Equal(t, "1\t0\t", out.String())
	})

	t.Run("float32", func(t *testing.T) {
		var out bytes.Buffer
		d := deque.New[float32]()
		for _, v := range []float32{1.123, 1.223, 1.3123} {
			require.NoError(t, d.PushBack(v))
		}
		require.NoError(t, d.PushFront(3.14))
		d.Traverse(Float32(New(&out)))
		assert.Equal(t, "3.140000\t1.123000\t1.223000\t1.312300\t", out.String())
	})

	t.Run("float64", func(t *testing.T) {
		var out bytes.Buffer
		d := deque.New[float64]()
		require.NoError(t, d.PushBack(2.5))
		d.Traverse(Float64(New(&out).WithSeparator(" ")))
		assert.Equal(t, "2.500000 ", out.String())
	})

	t.Run("char", func(t *testing.T) {
		var out bytes.Buffer
		d := deque.New[byte]()
		for _, c := range []byte("abc") {
			require.NoError(t, d.PushBack(c))
		}
		d.Traverse(Char(New(&out)))
		assert.Equal(t, "a\tb\tc\t", out.String())
	})

	t.Run("cstring", func(t *testing.T) {
		var out bytes.Buffer
		d := deque.New[[]byte]()
		require.NoError(t, d.PushBack([]byte("hello\x00garbage")))
		require.NoError(t, d.PushBack([]byte("world")))
		d.Traverse(CString(New(&out)))
		assert.Equal(t, "hello\tworld\t", out.String())
	})
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write([]byte) (int, error) {
	f.writes++
	return 0, errors.New("disk full")
}

func TestPrinter_KeepsFirstError(t *testing.T) {
	w := new(failingWriter)
	p := New(w)
	visit := Int[int](p)
	one, two := 1, 2
	visit(&one)
	visit(&two)
	p.Newline()
	assert.ErrorContains(t, p.Err(), "disk full")
	assert.Equal(t, 1, w.writes, "Writes after the first failure should be skipped")
}
