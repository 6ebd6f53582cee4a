package hako

// RawArray is the fixed-capacity, cursor-addressed storage strategy behind a
// Column. Read, Write and Reset act on the slot at the cursor and then advance
// the cursor by one. Positioning is always explicit: a Column calls SetCursor
// before every access, so implementations never need to track a live count.
//
// Three strategies ship with the engine:
//   - StructArray packs multi-field numeric records into flat int16/int32/float32 buffers.
//   - ObjectArray boxes arbitrary values in a slot slice.
//   - TagArray stores nothing and always yields one shared value.
type RawArray[T any] interface {
	// Cap returns the number of slots the backing was created with.
	Cap() int
	// Cursor returns the slot index used by the next Read, Write or Reset.
	Cursor() int
	// SetCursor moves the cursor to an absolute slot index.
	SetCursor(pos int)
	// Read returns the value at the cursor.
	Read() T
	// Write stores v at the cursor.
	Write(v T)
	// Reset stores the type's default value at the cursor.
	Reset()
}

// ObjectArray is a RawArray holding values directly in a slot slice. It is
// the backing for records that are not worth packing, such as pointers,
// strings or anything with variable size.
type ObjectArray[T any] struct {
	slots  []T
	zero   T
	cursor int
}

// NewObjectArray creates an ObjectArray of the given capacity. zero is the
// value Reset writes.
func NewObjectArray[T any](capacity int, zero T) *ObjectArray[T] {
	return &ObjectArray[T]{
		slots: make([]T, capacity),
		zero:  zero,
	}
}

func (a *ObjectArray[T]) Cap() int          { return len(a.slots) }
func (a *ObjectArray[T]) Cursor() int       { return a.cursor }
func (a *ObjectArray[T]) SetCursor(pos int) { a.cursor = pos }

func (a *ObjectArray[T]) Read() T {
	v := a.slots[a.cursor]
	a.cursor++
	return v
}

func (a *ObjectArray[T]) Write(v T) {
	a.slots[a.cursor] = v
	a.cursor++
}

func (a *ObjectArray[T]) Reset() {
	a.slots[a.cursor] = a.zero
	a.cursor++
}

// TagArray is a RawArray for marker components that carry no data. Nothing is
// stored; Read always returns the singleton passed at construction.
type TagArray[T any] struct {
	singleton T
	capacity  int
	cursor    int
}

// NewTagArray creates a TagArray of the given capacity.
func NewTagArray[T any](capacity int, singleton T) *TagArray[T] {
	return &TagArray[T]{singleton: singleton, capacity: capacity}
}

func (a *TagArray[T]) Cap() int          { return a.capacity }
func (a *TagArray[T]) Cursor() int       { return a.cursor }
func (a *TagArray[T]) SetCursor(pos int) { a.cursor = pos }

func (a *TagArray[T]) Read() T {
	a.cursor++
	return a.singleton
}

func (a *TagArray[T]) Write(T) { a.cursor++ }
func (a *TagArray[T]) Reset()  { a.cursor++ }

var (
	_ RawArray[int]      = (*ObjectArray[int])(nil)
	_ RawArray[struct{}] = (*TagArray[struct{}])(nil)
	_ RawArray[Entity]   = (*StructArray[Entity])(nil)
)
