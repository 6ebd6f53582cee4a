package hako

import (
	"iter"

	"github.com/rotisserie/eris"
)

// Column is a dense array of at most Cap() values backed by a RawArray. It
// tracks the live count separately from the backing's capacity and keeps the
// live slots packed at [0, Len()) by swap-removal.
type Column[T any] struct {
	raw   RawArray[T]
	count int
}

// NewColumn wraps raw in an empty Column.
func NewColumn[T any](raw RawArray[T]) *Column[T] {
	return &Column[T]{raw: raw}
}

// Len returns the number of live values.
func (c *Column[T]) Len() int { return c.count }

// Cap returns the capacity of the underlying backing.
func (c *Column[T]) Cap() int { return c.raw.Cap() }

// Append stores v in the next free slot and returns its index. It panics with
// ErrColumnFull when the column is at capacity.
func (c *Column[T]) Append(v T) int {
	i := c.grow()
	c.raw.Write(v)
	return i
}

// AppendZero appends the backing's default value and returns its index.
func (c *Column[T]) AppendZero() int {
	i := c.grow()
	c.raw.Reset()
	return i
}

func (c *Column[T]) grow() int {
	if c.count >= c.raw.Cap() {
		panic(eris.Wrapf(ErrColumnFull, "capacity %d", c.raw.Cap()))
	}
	i := c.count
	c.raw.SetCursor(i)
	c.count = i + 1
	return i
}

// Get returns the value at index i.
func (c *Column[T]) Get(i int) T {
	c.check(i)
	c.raw.SetCursor(i)
	return c.raw.Read()
}

// Set overwrites the value at index i.
func (c *Column[T]) Set(i int, v T) {
	c.check(i)
	c.raw.SetCursor(i)
	c.raw.Write(v)
}

// Remove deletes the value at index i by moving the last live value into its
// slot. When a value was actually moved, Remove returns it with ok set to
// true: the record that owned the last slot now lives at index i. Removing
// the last slot moves nothing and returns ok false.
func (c *Column[T]) Remove(i int) (moved T, ok bool) {
	c.check(i)
	last := c.count - 1
	c.count = last
	if i != last {
		c.raw.SetCursor(last)
		moved = c.raw.Read()
		c.raw.SetCursor(i)
		c.raw.Write(moved)
		ok = true
	}
	// the vacated slot is left holding the default value
	c.raw.SetCursor(last)
	c.raw.Reset()
	return moved, ok
}

// All yields every live index and value in slot order.
func (c *Column[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < c.count; i++ {
			c.raw.SetCursor(i)
			if !yield(i, c.raw.Read()) {
				return
			}
		}
	}
}

func (c *Column[T]) check(i int) {
	if i < 0 || i >= c.count {
		panic(eris.Wrapf(ErrIndexOutOfRange, "index %d, len %d", i, c.count))
	}
}

// column is the type-erased view of a Column used by chunks, which hold one
// column per component without knowing the value types.
type column interface {
	Len() int
	appendValue(v any)
	appendZero()
	value(i int) any
	setValue(i int, v any)
	remove(i int)
}

func (c *Column[T]) appendValue(v any) { c.Append(v.(T)) }
func (c *Column[T]) appendZero()       { c.AppendZero() }
func (c *Column[T]) value(i int) any   { return c.Get(i) }
func (c *Column[T]) remove(i int)      { c.Remove(i) }

func (c *Column[T]) setValue(i int, v any) { c.Set(i, v.(T)) }
