// This module provides visitors that print primitive deque elements. Every value is followed by a separator
// (a tab by default), so traversing a deque with one of them prints the whole deque on a single line.

package printer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

const defaultSeparator = "\t"

// Integer is the set of types printed by Int.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Printer writes formatted elements to an io.Writer. Visitors can't return errors, so the first write error is
// kept and every later write is skipped.
type Printer struct {
	w         io.Writer
	separator string
	err       error
}

// New creates a printer writing to `w`.
func New(w io.Writer) *Printer {
	return &Printer{w: w, separator: defaultSeparator}
}

// WithSeparator replaces the text written after every element.
func (p *Printer) WithSeparator(separator string) *Printer {
	p.separator = separator
	return p
}

// Err returns the first error the underlying writer returned, if any.
func (p *Printer) Err() error {
	return p.err
}

// Newline ends the current line.
func (p *Printer) Newline() {
	p.write("\n")
}

func (p *Printer) write(s string) {
	if p.err != nil {
		return
	}
	if _, err := io.WriteString(p.w, s); err != nil {
		p.err = fmt.Errorf("failed to print element: %w", err)
	}
}

func (p *Printer) element(s string) {
	p.write(s + p.separator)
}

// Int prints integers in base 10.
func Int[T Integer](p *Printer) func(*T) {
	return func(v *T) { p.element(fmt.Sprintf("%d", *v)) }
}

// Bool prints booleans as 1 or 0.
func Bool(p *Printer) func(*bool) {
	return func(v *bool) {
		if *v {
			p.element("1")
		} else {
			p.element("0")
		}
	}
}

// Float32 prints single precision floats with six decimals.
func Float32(p *Printer) func(*float32) {
	return func(v *float32) { p.element(strconv.FormatFloat(float64(*v), 'f', 6, 32)) }
}

// Float64 prints double precision floats with six decimals.
func Float64(p *Printer) func(*float64) {
	return func(v *float64) { p.element(strconv.FormatFloat(*v, 'f', 6, 64)) }
}

// Char prints a single byte as a character.
func Char(p *Printer) func(*byte) {
	return func(v *byte) { p.element(string([]byte{*v})) }
}

// CString prints NUL terminated text; bytes after the first NUL are ignored.
func CString(p *Printer) func(*[]byte) {
	return func(v *[]byte) {
		text := *v
		if end := bytes.IndexByte(text, 0); end >= 0 {
			text = text[:end]
		}
		p.element(string(text))
	}
}
